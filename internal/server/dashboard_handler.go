package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/carrierwatch/carrierwatch/internal/domain"
	"github.com/carrierwatch/carrierwatch/internal/repository"
	"github.com/carrierwatch/carrierwatch/internal/server/html"
)

func (s *server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	errMsgs := make([]string, 0)
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		errMsgs = append(errMsgs, errMsg)
	}

	apps, err := s.store.Load(r.Context())
	if err != nil {
		s.logger.Error("error loading applications", "error", err)
		errMsgs = append(errMsgs, "Error loading applications")
	}

	query := r.URL.Query()
	statusSel := query.Get("status")
	domainSel := query.Get("domain")
	topicSel := query.Get("topic")

	filtered := lo.Filter(apps, func(app domain.Application, _ int) bool {
		if statusSel != "" && s.labels[app.Status] != statusSel {
			return false
		}
		if domainSel != "" && app.Domain != domainSel {
			return false
		}
		if topicSel != "" && app.Topic != topicSel {
			return false
		}
		return true
	})

	// Headline metrics cover the whole table; the chart and the rows follow
	// the active filters.
	counts := lo.CountValuesBy(apps, func(app domain.Application) domain.Status { return app.Status })
	chartCounts := lo.CountValuesBy(filtered, func(app domain.Application) domain.Status { return app.Status })
	chart := lo.Map(domain.AllStatuses, func(status domain.Status, _ int) html.ChartBar {
		bar := html.ChartBar{Label: s.labels[status], Count: chartCounts[status]}
		if len(filtered) > 0 {
			bar.Percent = bar.Count * 100 / len(filtered)
		}
		return bar
	})

	lastSync := ""
	if state := repository.LoadState(s.statePath); !state.LastSync.IsZero() {
		lastSync = state.LastSync.Local().Format("2006-01-02 15:04")
	}

	params := html.DashboardParams{
		Title:          "CarrierWatch",
		Errors:         errMsgs,
		Flash:          query.Get("msg"),
		Total:          len(apps),
		Accepted:       counts[domain.StatusAccepted],
		Rejected:       counts[domain.StatusRejected],
		Pending:        counts[domain.StatusPending],
		Chart:          chart,
		Rows:           lo.Map(filtered, func(app domain.Application, _ int) html.ApplicationRow { return s.row(app) }),
		StatusOptions:  lo.Map(domain.AllStatuses, func(st domain.Status, _ int) string { return s.labels[st] }),
		DomainOptions:  distinct(apps, func(app domain.Application) string { return app.Domain }),
		TopicOptions:   distinct(apps, func(app domain.Application) string { return app.Topic }),
		SelectedStatus: statusSel,
		SelectedDomain: domainSel,
		SelectedTopic:  topicSel,
		LastSync:       lastSync,
	}
	html.DashboardPage(w, params)
}

func (s *server) row(app domain.Application) html.ApplicationRow {
	return html.ApplicationRow{
		Code:            app.Code,
		Company:         app.Company,
		Topic:           app.Topic,
		Domain:          app.Domain,
		Status:          s.labels[app.Status],
		ApplicationDate: formatDate(app.ApplicationDate, "2006-01-02"),
		InternshipStart: formatDate(app.InternshipStart, "2006-01-02"),
		LastEmail:       formatDate(app.LastEmail, "2006-01-02 15:04"),
		Source:          string(app.Source),
	}
}

func formatDate(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

func distinct(apps []domain.Application, field func(domain.Application) string) []string {
	values := lo.Uniq(lo.FilterMap(apps, func(app domain.Application, _ int) (string, bool) {
		v := field(app)
		return v, v != ""
	}))
	sort.Strings(values)
	return values
}
