package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
)

type whoamiOutput struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role"`
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("cli.health").
		Description("Check database and cache connectivity").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			if app.Container == nil {
				return map[string]string{"status": "ok"}, nil
			}
			report := app.Container.Health.Check(ctx)
			out := map[string]string{"status": string(report.Status)}
			for name, check := range report.Checks {
				out[name] = string(check.Status)
			}
			return out, nil
		})

	srv.Tool("cli.whoami").
		Description("Show the identity this server acts as").
		Handler(func(ctx context.Context, input struct{}) (*whoamiOutput, error) {
			actor, err := actorOf(app)
			if err != nil {
				return nil, err
			}
			return &whoamiOutput{ActorID: actor.ID.String(), Role: actor.Role.String()}, nil
		})
}
