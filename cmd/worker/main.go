package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/clinicq/internal/app"
	notificationInfra "github.com/felixgeelhaar/clinicq/internal/notifications/infrastructure"
	"github.com/felixgeelhaar/clinicq/internal/worker"
	"github.com/felixgeelhaar/clinicq/pkg/config"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := observability.NewLogger(observability.DefaultLogConfig())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logCfg := observability.DefaultLogConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.ServiceName = "clinicq-worker"
	logger = observability.NewLogger(logCfg)
	logger.Info("starting clinicq worker")

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	w, err := worker.New(container, notificationInfra.NewLogSink(logger))
	if err != nil {
		logger.Error("failed to initialize worker", "error", err)
		os.Exit(1)
	}
	if err := w.Run(ctx); err != nil {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
