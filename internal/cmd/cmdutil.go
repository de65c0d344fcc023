package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carrierwatch/carrierwatch/internal/domain"
	"github.com/carrierwatch/carrierwatch/internal/mail"
	"github.com/carrierwatch/carrierwatch/internal/reconcile"
	"github.com/carrierwatch/carrierwatch/internal/repository"
	"github.com/carrierwatch/carrierwatch/internal/service"
)

func newLogger(serviceName string) *slog.Logger {
	env := os.Getenv("ENV")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	child := logger.With(slog.Group("service_info", slog.String("env", env), slog.String("service", serviceName)))
	return child
}

func dataDir() string {
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "data"
	}
	return dir
}

func statePath() string {
	return filepath.Join(dataDir(), "sync_state.json")
}

func newLabels() domain.LabelSet {
	return domain.Labels(os.Getenv("STATUS_LABELS"))
}

func newDatabasePool(ctx context.Context, maxConns int) (*pgxpool.Pool, error) {
	if maxConns == 0 {
		maxConns = 1
	}
	unformattedConnStr := os.Getenv("DATABASE_CONNECTION_POOL_URL")
	err := repository.Migrate("up", unformattedConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	queryChar := "?"
	if strings.Contains(unformattedConnStr, "?") {
		queryChar = "&"
	}
	url := fmt.Sprintf(
		"%s%vpool_max_conns=%d&pool_min_conns=%d",
		unformattedConnStr,
		queryChar,
		maxConns,
		1,
	)
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}

	// Setting the build statement cache to nil helps this work with pgbouncer
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Second
	return pgxpool.NewWithConfig(ctx, config)
}

func newStore(ctx context.Context) (domain.ApplicationRepository, error) {
	labels := newLabels()
	switch os.Getenv("STORE_BACKEND") {
	case "postgres":
		pool, err := newDatabasePool(ctx, 4)
		if err != nil {
			return nil, fmt.Errorf("error creating db pool: %w", err)
		}
		return repository.NewPostgresStore(pool, labels), nil
	default:
		return repository.NewExcelStore(filepath.Join(dataDir(), "applications.xlsx"), labels), nil
	}
}

func newFetcher(ctx context.Context) (domain.MailFetcher, error) {
	switch os.Getenv("MAIL_PROVIDER") {
	case "gmail":
		return mail.NewGmailFetcher(ctx, []byte(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_CONTENT")))
	default:
		return mail.NewGraphFetcher(ctx, os.Getenv("GRAPH_CLIENT_ID"), filepath.Join(dataDir(), "token_cache.json"))
	}
}

func newSyncer(ctx context.Context, logger *slog.Logger) (*service.Syncer, domain.ApplicationRepository, error) {
	store, err := newStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	fetcher, err := newFetcher(ctx)
	if err != nil {
		return nil, nil, err
	}

	engine := reconcile.NewEngine(reconcile.NewClassifier(nil), reconcile.Options{
		AllowDowngrade: os.Getenv("SYNC_ALLOW_DOWNGRADE") == "true",
	})

	limit := 0
	if v := os.Getenv("SYNC_FETCH_LIMIT"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	return service.NewSyncer(logger, store, fetcher, engine, statePath(), limit), store, nil
}
