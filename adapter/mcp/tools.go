package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
)

// ToolDependencies provides handlers and the acting identity for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registerCoreTools(srv, deps)
	registerAppointmentTools(srv, deps)
	registerAvailabilityTools(srv, deps)
	return nil
}
