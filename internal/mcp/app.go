package mcp

import (
	"github.com/felixgeelhaar/clinicq/adapter/cli"
	"github.com/felixgeelhaar/clinicq/internal/app"
	"github.com/felixgeelhaar/clinicq/pkg/config"
)

// NewCLIApp creates a CLI application backed by the container, acting as
// the identity configured in cfg.
func NewCLIApp(container *app.Container, cfg *config.Config) (*cli.App, error) {
	actor, err := cli.ConfiguredActor(cfg)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(container, actor), nil
}
