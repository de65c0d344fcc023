package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carrierwatch/carrierwatch/internal/domain"
	"github.com/carrierwatch/carrierwatch/internal/server/html"
	"github.com/carrierwatch/carrierwatch/internal/service"
)

//go:embed static
var staticFiles embed.FS

type server struct {
	logger *slog.Logger

	store  domain.ApplicationRepository
	syncer *service.Syncer
	labels domain.LabelSet

	passwordHash string
	sessions     *sessionStore
	statePath    string

	broker *WsBroker

	staticFilesFs fs.FS
}

func NewServer(logger *slog.Logger, store domain.ApplicationRepository, syncer *service.Syncer, labels domain.LabelSet, passwordHash string, statePath string) (*server, error) {
	staticFilesFs, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}
	broker := NewWsBroker()
	go broker.Listen(logger)

	// Completed syncs are pushed to every open dashboard.
	syncer.OnSummary = func(summary domain.SyncSummary) {
		payload, err := json.Marshal(summary)
		if err != nil {
			logger.Error("failed to marshal sync summary", "error", err)
			return
		}
		broker.Notifier <- payload
	}

	return &server{
		logger:        logger,
		store:         store,
		syncer:        syncer,
		labels:        labels,
		passwordHash:  passwordHash,
		sessions:      newSessionStore(5 * 24 * time.Hour),
		statePath:     statePath,
		broker:        broker,
		staticFilesFs: staticFilesFs,
	}, nil
}

func (s *server) Server(port int) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.routes(),
	}
}

func errorQuery(errMsg string) string {
	if errMsg == "" {
		return ""
	}
	return fmt.Sprintf("error=%v", url.QueryEscape(errMsg))
}

func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.staticFilesFs))))
	r.Get("/up", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "up!")
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/", http.StatusSeeOther)
	})

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		err := r.URL.Query().Get("error")
		html.LoginPage(w, html.LoginParams{Title: "Login", Error: err})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.sessionVerifier)
		r.Get("/", s.handleGetDashboard)

		r.Get("/application/{code}", s.handleGetApplication)
		r.Post("/application/{code}", s.handlePostApplication)

		r.Post("/sync", s.handlePostSync)
		r.Get("/ws", s.handleWs)
	})
	return r
}
