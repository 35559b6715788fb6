package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/contentdesk/internal/api/http"
	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/config"
	"github.com/spec-kit/contentdesk/internal/observability"
	"github.com/spec-kit/contentdesk/internal/persistence"
	"github.com/spec-kit/contentdesk/internal/poller"
	"github.com/spec-kit/contentdesk/internal/support"
	"github.com/spec-kit/contentdesk/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := observability.SetupTracing(ctx, cfg.App.Name, cfg.Telemetry, logger)
	metrics := observability.NewMetrics("contentdesk_console")

	backends, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open session storage", zap.Error(err))
	}
	defer backends.Close()

	if backends.Sessions != nil {
		stopJanitor := worker.StartSessionJanitor(ctx, backends.Sessions, cfg.Session.JanitorEvery, logger, metrics)
		defer stopJanitor()
	}

	client := apiclient.New(apiclient.Options{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout(),
		ClientName: cfg.Backend.ClientName,
		Recorder:   metrics,
		Logger:     logger,
	})

	registry := support.NewRegistry()
	done := make(chan struct{})

	app := httptransport.NewApp(httptransport.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Client:   client,
		Storage:  backends.Storage,
		Postgres: backends.Postgres,
		Redis:    backends.Redis,
		Registry: registry,
		Clock:    poller.RealClock{},
		Done:     done,
	})

	go func() {
		logger.Info("console listening", zap.String("addr", cfg.App.Addr()), zap.String("backend", cfg.Backend.BaseURL))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	close(done)
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	registry.Close()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("trace flush", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
