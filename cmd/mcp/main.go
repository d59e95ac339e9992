package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/clinicq/internal/app"
	mcpinternal "github.com/felixgeelhaar/clinicq/internal/mcp"
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
	logCfg.ServiceName = "clinicq-mcp"
	logger = observability.NewLogger(logCfg)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cliApp, err := mcpinternal.NewCLIApp(container, cfg)
	if err != nil {
		logger.Error("invalid acting identity", "error", err)
		os.Exit(1)
	}

	if cfg.OutboxProcessorEnabled {
		if err := container.OutboxProcessor.Start(ctx); err != nil {
			logger.Error("failed to start outbox processor", "error", err)
			os.Exit(1)
		}
	}

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
