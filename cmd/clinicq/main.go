package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	"github.com/felixgeelhaar/clinicq/adapter/cli/appointment"
	"github.com/felixgeelhaar/clinicq/adapter/cli/availability"
	"github.com/felixgeelhaar/clinicq/adapter/cli/mcp"
	"github.com/felixgeelhaar/clinicq/internal/app"
	"github.com/felixgeelhaar/clinicq/pkg/config"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		slog.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development", LogLevel: "warn", DatabaseDriver: "auto", ActorRole: "patient"}
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		actor, err := cli.ConfiguredActor(cfg)
		if err != nil {
			logger.Error("invalid acting identity", "error", err)
			os.Exit(1)
		}
		cliApp = cli.NewApp(container, actor)
	}
	cli.SetApp(cliApp)

	cli.AddCommand(appointment.Commands()...)
	cli.AddCommand(availability.Cmd, availability.BlocksCmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
