package mcp

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	"github.com/felixgeelhaar/clinicq/internal/app"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/clinicq/pkg/config"
)

func TestServe_RequiresConfigAndApp(t *testing.T) {
	ctx := context.Background()
	assert.ErrorContains(t, Serve(ctx, nil, &cli.App{}, nil), "config is required")
	assert.ErrorContains(t, Serve(ctx, &config.Config{}, nil, nil), "CLI app is required")
}

func TestNewCLIApp_ActsAsConfiguredIdentity(t *testing.T) {
	container := app.NewContainerWithConnection(dbtest.Open(t), nil, nil)
	id := uuid.New()

	cliApp, err := NewCLIApp(container, &config.Config{ActorID: id.String(), ActorRole: "doctor"})
	require.NoError(t, err)
	assert.Equal(t, sharedDomain.Actor{ID: id, Role: sharedDomain.RoleDoctor}, cliApp.DefaultActor)
	assert.Same(t, container.BookAppointmentHandler, cliApp.BookAppointmentHandler)

	_, err = NewCLIApp(container, &config.Config{ActorID: id.String(), ActorRole: "nurse"})
	assert.ErrorIs(t, err, sharedDomain.ErrUnknownRole)

	_, err = NewCLIApp(container, &config.Config{ActorID: "not-a-uuid", ActorRole: "patient"})
	assert.Error(t, err)
}

func TestMCPLogger_ForwardsFields(t *testing.T) {
	var buf bytes.Buffer
	l := mcpLogger{logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Info("tool called", middleware.Field{Key: "tool", Value: "slots.list"})

	assert.Contains(t, buf.String(), "tool=slots.list")
}

func TestNewServer_RegistersTools(t *testing.T) {
	srv, err := newServer(&cli.App{}, slog.Default())
	require.NoError(t, err)
	assert.NotNil(t, srv)
}

func TestMiddlewareStack_AddsAuthWhenTokenSet(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	actor := sharedDomain.Actor{ID: uuid.New(), Role: sharedDomain.RoleDoctor}

	open := middlewareStack("", actor, logger)
	assert.Contains(t, buf.String(), "unauthenticated")

	guarded := middlewareStack("s3cret", actor, logger)
	assert.Len(t, guarded, len(open)+1)
}
