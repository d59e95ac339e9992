package mcp

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
)

var errNoDatabase = errors.New("clinicq requires a database connection")

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

func parseOptionalUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}
	return parseUUID(value)
}

// actorOf returns the identity the server was started as.
func actorOf(app *cli.App) (sharedDomain.Actor, error) {
	if app.DefaultActor.ID == uuid.Nil {
		return sharedDomain.Actor{}, errors.New("no acting identity configured; set CLINICQ_ACTOR_ID")
	}
	return app.DefaultActor, nil
}
