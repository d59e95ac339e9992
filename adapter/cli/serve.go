package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicq/adapter/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Container == nil {
			return ErrNotInitialized
		}
		c := app.Container

		cfg := api.DefaultServerConfig()
		cfg.Addr = c.Config.HTTPAddr
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		cfg.JWTSecret = c.Config.JWTSecret
		if cfg.JWTSecret == "" {
			Logger().Warn("JWT_SECRET is empty; tokens are signed with an empty key")
		}

		ctx := cmd.Context()
		if c.Config.OutboxProcessorEnabled && !c.OutboxProcessor.IsRunning() {
			go c.OutboxProcessor.Start(ctx)
			defer c.OutboxProcessor.Stop()
		}

		server := api.NewServer(cfg, c, Logger())
		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
