package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	mcplocal "github.com/felixgeelhaar/clinicq/adapter/mcp"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/pkg/config"
)

// Serve exposes the clinic tools over MCP HTTP and blocks until ctx is done.
// Every call acts as the app's configured identity.
func Serve(ctx context.Context, cfg *config.Config, cliApp *cli.App, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cliApp == nil {
		return errors.New("CLI app is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := newServer(cliApp, logger)
	if err != nil {
		return err
	}

	logger.Info("mcp server listening", "addr", cfg.MCPAddr, "actor_role", cliApp.DefaultActor.Role.String())
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil,
		mcpgo.WithMiddleware(middlewareStack(cfg.MCPAuthToken, cliApp.DefaultActor, logger)...))
}

// newServer registers the tool surface. Tools are required; resources and
// prompts are best effort.
func newServer(cliApp *cli.App, logger *slog.Logger) (*mcpgo.Server, error) {
	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:         "clinicq-mcp",
		Version:      cli.Version,
		Capabilities: mcpgo.Capabilities{Tools: true, Resources: true, Prompts: true},
	})

	deps := mcplocal.ToolDependencies{App: cliApp}
	if err := mcplocal.RegisterCLITools(srv, deps); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	if err := mcplocal.RegisterResources(srv, deps); err != nil {
		logger.Warn("mcp resources unavailable", "error", err)
	}
	if err := mcplocal.RegisterPrompts(srv, deps); err != nil {
		logger.Warn("mcp prompts unavailable", "error", err)
	}
	return srv, nil
}

// middlewareStack puts bearer auth in front of the default stack when a
// token is configured. The token maps to the acting identity.
func middlewareStack(token string, actor sharedDomain.Actor, logger *slog.Logger) []middleware.Middleware {
	log := mcpLogger{logger: logger}
	stack := middleware.DefaultStack(log)
	if token == "" {
		logger.Warn("MCP_AUTH_TOKEN not set; requests will be unauthenticated")
		return stack
	}

	identities := middleware.StaticTokens(map[string]*middleware.Identity{
		token: {ID: actor.ID.String(), Name: actor.Role.String()},
	})
	auth := middleware.Auth(middleware.BearerTokenAuthenticator(identities), middleware.WithAuthLogger(log))
	return append([]middleware.Middleware{auth}, stack...)
}

type mcpLogger struct {
	logger *slog.Logger
}

func (l mcpLogger) Info(msg string, fields ...middleware.Field) {
	l.logger.Info(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Error(msg string, fields ...middleware.Field) {
	l.logger.Error(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Debug(msg string, fields ...middleware.Field) {
	l.logger.Debug(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Warn(msg string, fields ...middleware.Field) {
	l.logger.Warn(msg, fieldsToArgs(fields)...)
}

func fieldsToArgs(fields []middleware.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		args = append(args, field.Key, field.Value)
	}
	return args
}
