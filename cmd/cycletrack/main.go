package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "cycletrack/internal/adapter/http"
	"cycletrack/internal/adapter/memory"
	"cycletrack/internal/adapter/postgres"
	"cycletrack/internal/adapter/replica"
	"cycletrack/internal/app"
	"cycletrack/internal/config"
	"cycletrack/internal/domain"
	"cycletrack/internal/metrics"
	"cycletrack/internal/worker/syncer"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var remote domain.RemoteStore
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Error("db open failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		remote = db
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory remote store")
		remote = memory.NewRemote()
	}

	replicas, err := replica.Open(cfg.ReplicaPath)
	if err != nil {
		logger.Error("replica store open failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = replicas.Close() }()

	collector := metrics.NewCollector()
	journalSvc := app.NewJournalService(replicas, remote)
	syncSvc := app.NewSyncService(replicas, remote, collector)

	kick := make(chan struct{}, 1)
	worker := syncer.New(syncSvc, replicas, logger, cfg.SyncBackoffInitial, cfg.SyncBackoffMax)
	go worker.Start(ctx, cfg.SyncInterval, kick)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: adapthttp.New(journalSvc, syncSvc, collector.Handler(), kick).Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", slog.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
