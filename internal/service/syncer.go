package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carrierwatch/carrierwatch/internal/domain"
	"github.com/carrierwatch/carrierwatch/internal/metrics"
	"github.com/carrierwatch/carrierwatch/internal/reconcile"
	"github.com/carrierwatch/carrierwatch/internal/repository"
)

// Syncer runs one full mail sync: load the table snapshot, fetch the email
// batch, reconcile, save. The save is the only write; if anything before it
// fails, the store is left exactly as it was.
type Syncer struct {
	logger    *slog.Logger
	store     domain.ApplicationRepository
	fetcher   domain.MailFetcher
	engine    *reconcile.Engine
	statePath string
	limit     int

	// OnSummary, when set, receives the summary of every successful run.
	// The web server uses it to push results to open dashboards.
	OnSummary func(domain.SyncSummary)
}

func NewSyncer(logger *slog.Logger, store domain.ApplicationRepository, fetcher domain.MailFetcher, engine *reconcile.Engine, statePath string, limit int) *Syncer {
	return &Syncer{
		logger:    logger,
		store:     store,
		fetcher:   fetcher,
		engine:    engine,
		statePath: statePath,
		limit:     limit,
	}
}

func (s *Syncer) Run(ctx context.Context) (domain.SyncSummary, error) {
	started := time.Now()
	state := repository.LoadState(s.statePath)

	apps, err := s.store.Load(ctx)
	if err != nil {
		metrics.RecordRun("failed")
		return domain.SyncSummary{}, fmt.Errorf("sync: %w", err)
	}

	emails, err := s.fetcher.Fetch(ctx, state.LastSync, s.limit)
	if err != nil {
		metrics.RecordRun("failed")
		return domain.SyncSummary{}, fmt.Errorf("sync: fetching mail: %w", err)
	}

	updated, summary := s.engine.Reconcile(emails, apps)

	if err := s.store.Save(ctx, updated); err != nil {
		metrics.RecordRun("failed")
		return domain.SyncSummary{}, fmt.Errorf("sync: %w", err)
	}

	if err := repository.SaveState(s.statePath, repository.SyncState{LastSync: started.UTC()}); err != nil {
		// Not fatal: the next run just re-fetches a wider window, and the
		// lastEmail staleness check absorbs the replay.
		s.logger.Warn("failed to save sync state", "error", err)
	}

	metrics.RecordRun("ok")
	metrics.RecordSummary(summary)
	s.logger.Info("sync completed",
		"scanned", summary.Scanned,
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"duration", time.Since(started).String(),
	)

	if s.OnSummary != nil {
		s.OnSummary(summary)
	}
	return summary, nil
}
