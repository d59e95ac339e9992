package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/clinicq/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server as the current identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Container == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}
		served := *app
		served.DefaultActor = actor

		err = mcpinternal.Serve(cmd.Context(), app.Container.Config, &served, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
