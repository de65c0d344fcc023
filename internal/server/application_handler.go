package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/carrierwatch/carrierwatch/internal/domain"
	"github.com/carrierwatch/carrierwatch/internal/server/html"
)

func (s *server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	errMsg := r.URL.Query().Get("error")

	var app domain.Application
	if code != "null" {
		apps, err := s.store.Load(r.Context())
		if err != nil {
			s.logger.Error("error loading applications", "error", err)
			redirectToDashboard(w, r, "", "error loading applications")
			return
		}
		found, ok := lo.Find(apps, func(a domain.Application) bool { return a.Code == code })
		if !ok {
			redirectToDashboard(w, r, "", "unknown application "+code)
			return
		}
		app = found
	}

	params := html.ApplicationParams{
		Title: "Application",
		Error: errMsg,
		IsNew: code == "null",
		App: html.ApplicationForm{
			Code:            app.Code,
			Company:         app.Company,
			Topic:           app.Topic,
			Domain:          app.Domain,
			Status:          s.labels[app.Status],
			ApplicationDate: formatDate(app.ApplicationDate, "2006-01-02"),
			InternshipStart: formatDate(app.InternshipStart, "2006-01-02"),
		},
		StatusOptions: lo.Map(domain.AllStatuses, func(st domain.Status, _ int) string { return s.labels[st] }),
	}
	html.ApplicationPage(w, params)
}

func (s *server) handlePostApplication(w http.ResponseWriter, r *http.Request) {
	urlCode := chi.URLParam(r, "code")

	apps, err := s.store.Load(r.Context())
	if err != nil {
		s.logger.Error("error loading applications", "error", err)
		redirectToDashboard(w, r, "", "error loading applications")
		return
	}

	if r.FormValue("delete") == "true" && urlCode != "null" {
		apps = lo.Reject(apps, func(a domain.Application, _ int) bool { return a.Code == urlCode })
		if err := s.store.Save(r.Context(), apps); err != nil {
			s.logger.Error("failed to delete application", "error", err, "code", urlCode)
			redirectToDashboard(w, r, "", "failed to delete")
			return
		}
		redirectToDashboard(w, r, "deleted "+urlCode, "")
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))
	company := strings.TrimSpace(r.FormValue("company"))
	if code == "" || company == "" {
		redirectToForm(w, r, urlCode, "code and company are required")
		return
	}

	status, _ := domain.ParseStatus(r.FormValue("status"))
	applicationDate := parseFormDate(r.FormValue("applicationDate"))
	internshipStart := parseFormDate(r.FormValue("internshipStart"))

	codeTaken := func(except string) bool {
		return lo.SomeBy(apps, func(a domain.Application) bool { return a.Code == code && a.Code != except })
	}

	if urlCode == "null" {
		if codeTaken("") {
			redirectToForm(w, r, urlCode, "code already in use")
			return
		}
		apps = append(apps, domain.Application{
			Code:            code,
			Company:         company,
			Topic:           strings.TrimSpace(r.FormValue("topic")),
			Domain:          strings.TrimSpace(r.FormValue("domain")),
			Status:          status,
			ApplicationDate: applicationDate,
			InternshipStart: internshipStart,
			Source:          domain.SourceManual,
		})
	} else {
		_, idx, ok := lo.FindIndexOf(apps, func(a domain.Application) bool { return a.Code == urlCode })
		if !ok {
			redirectToDashboard(w, r, "", "unknown application "+urlCode)
			return
		}
		if code != urlCode && codeTaken(urlCode) {
			redirectToForm(w, r, urlCode, "code already in use")
			return
		}
		// lastEmail, source and unknown columns are owned by sync or by the
		// spreadsheet; the form never touches them.
		app := &apps[idx]
		app.Code = code
		app.Company = company
		app.Topic = strings.TrimSpace(r.FormValue("topic"))
		app.Domain = strings.TrimSpace(r.FormValue("domain"))
		app.Status = status
		app.ApplicationDate = applicationDate
		app.InternshipStart = internshipStart
	}

	if err := s.store.Save(r.Context(), apps); err != nil {
		s.logger.Error("failed to save applications", "error", err)
		redirectToDashboard(w, r, "", "failed to save")
		return
	}
	redirectToDashboard(w, r, "saved "+code, "")
}

func redirectToDashboard(w http.ResponseWriter, r *http.Request, msg string, errMsg string) {
	q := errorQuery(errMsg)
	if msg != "" {
		q = "msg=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/?%v", q), http.StatusSeeOther)
}

func redirectToForm(w http.ResponseWriter, r *http.Request, code string, errMsg string) {
	http.Redirect(w, r, fmt.Sprintf("/admin/application/%v?%v", code, errorQuery(errMsg)), http.StatusSeeOther)
}

func parseFormDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}
