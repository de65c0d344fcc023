package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
)

var sessionCookieKey = "SESSION_ID"

// sessionStore is a plain in-memory session set: one user, one process,
// nothing to share.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	ttl      time.Duration
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]time.Time),
		ttl:      ttl,
	}
}

func (st *sessionStore) create() string {
	id := uuid.NewString()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = time.Now().Add(st.ttl)
	return id
}

func (st *sessionStore) valid(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	expiry, ok := st.sessions[id]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(st.sessions, id)
		return false
	}
	return true
}

func (st *sessionStore) revoke(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")
	if password == "" {
		http.Redirect(w, r, "/login?error=bad request", http.StatusSeeOther)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.logger.Warn("failed login attempt")
		http.Redirect(w, r, "/login?error=wrong password", http.StatusSeeOther)
		return
	}

	sessionId := s.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieKey,
		Value:    sessionId,
		Expires:  time.Now().Add(5 * 24 * time.Hour),
		HttpOnly: true,
		Path:     "/",
	})
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, ok := lo.Find(r.Cookies(), func(c *http.Cookie) bool { return c.Name == sessionCookieKey }); ok {
		s.sessions.revoke(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookieKey,
		Value:  "",
		MaxAge: -1,
		Path:   "/",
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) sessionVerifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, ok := lo.Find(r.Cookies(), func(c *http.Cookie) bool { return c.Name == sessionCookieKey })
		if !ok || !s.sessions.valid(cookie.Value) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
