package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	serverPkg "github.com/carrierwatch/carrierwatch/internal/server"
)

func ServerCmd(ctx context.Context) error {
	godotenv.Load()
	port := 9090
	_port := os.Getenv("PORT")
	if _port != "" {
		port, _ = strconv.Atoi(_port)
	}
	logger := newLogger("web")

	passwordHash := os.Getenv("ADMIN_PASSWORD_BCRYPT")
	if passwordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_BCRYPT is not set")
	}

	syncer, store, err := newSyncer(ctx, logger)
	if err != nil {
		return fmt.Errorf("error creating syncer: %w", err)
	}

	server, err := serverPkg.NewServer(logger, store, syncer, newLabels(), passwordHash, statePath())
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	srv := server.Server(port)

	// metrics
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		http.ListenAndServe(":9091", mux)
	}()

	go func() {
		_ = srv.ListenAndServe()
	}()
	logger.Info("started server", slog.Int("port", port))
	<-ctx.Done()
	_ = srv.Shutdown(ctx)
	return nil
}
