package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	scheduleQueries "github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
)

// RegisterResources registers read-only views for the acting identity.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("clinicq://appointments").
		Name("Appointments").
		Description("Appointments visible to the acting identity").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.ListAppointmentsHandler == nil {
				return nil, errNoDatabase
			}
			actor, err := actorOf(app)
			if err != nil {
				return nil, err
			}
			list, err := app.ListAppointmentsHandler.Handle(ctx, scheduleQueries.ListAppointmentsQuery{Actor: actor, Limit: 100})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, list)
		})

	srv.Resource("clinicq://appointments/requests").
		Name("Pending requests").
		Description("Requests awaiting the acting doctor's decision").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.ListPendingRequestsHandler == nil {
				return nil, errNoDatabase
			}
			actor, err := actorOf(app)
			if err != nil {
				return nil, err
			}
			list, err := app.ListPendingRequestsHandler.Handle(ctx, scheduleQueries.ListPendingRequestsQuery{Actor: actor})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, list)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
