package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/carrierwatch/carrierwatch/internal/domain"
)

var (
	SyncEmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carrierwatch_sync_emails_total",
			Help: "Emails handled by reconciliation, by outcome",
		},
		[]string{"outcome"}, // outcome: scanned, created, updated, skipped, errors
	)

	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carrierwatch_sync_runs_total",
			Help: "Completed sync runs, by result",
		},
		[]string{"status"}, // status: ok, failed
	)
)

// RecordSummary feeds one reconciliation summary into the counters.
func RecordSummary(summary domain.SyncSummary) {
	SyncEmailsTotal.WithLabelValues("scanned").Add(float64(summary.Scanned))
	SyncEmailsTotal.WithLabelValues("created").Add(float64(summary.Created))
	SyncEmailsTotal.WithLabelValues("updated").Add(float64(summary.Updated))
	SyncEmailsTotal.WithLabelValues("skipped").Add(float64(summary.Skipped))
	SyncEmailsTotal.WithLabelValues("errors").Add(float64(summary.Errors))
}

func RecordRun(status string) {
	SyncRunsTotal.WithLabelValues(status).Inc()
}
