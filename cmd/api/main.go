package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/clinicq/adapter/api"
	"github.com/felixgeelhaar/clinicq/internal/app"
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
	logCfg.ServiceName = "clinicq-api"
	logger = observability.NewLogger(logCfg)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if cfg.OutboxProcessorEnabled {
		if err := container.OutboxProcessor.Start(ctx); err != nil {
			logger.Error("failed to start outbox processor", "error", err)
			os.Exit(1)
		}
	}

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.HTTPAddr
	serverCfg.JWTSecret = cfg.JWTSecret
	server := api.NewServer(serverCfg, container, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api server shutdown error", "error", err)
	}
}
