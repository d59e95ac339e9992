package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availabilityCommands "github.com/felixgeelhaar/clinicq/internal/availability/application/commands"
	availabilityDomain "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	scheduleCommands "github.com/felixgeelhaar/clinicq/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
	schedulingDomain "github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/clinicq/pkg/config"
)

type countingConsumer struct {
	keys []string
}

func (c *countingConsumer) EventTypes() []string { return schedulingDomain.RoutingKeys }

func (c *countingConsumer) Handle(_ context.Context, e *eventbus.ConsumedEvent) error {
	c.keys = append(c.keys, e.RoutingKey)
	return nil
}

func newLocalContainer(t *testing.T) *Container {
	t.Helper()
	cfg := &config.Config{
		AppEnv:         "development",
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "clinicq.db"),
	}
	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewContainer_DefaultsNilLogger(t *testing.T) {
	c := newLocalContainer(t)
	assert.Same(t, slog.Default(), c.Logger)
}

func TestNewContainer_RequiresConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil, nil)
	assert.ErrorContains(t, err, "config is required")
}

func TestNewContainer_LocalSQLite(t *testing.T) {
	c := newLocalContainer(t)

	assert.Equal(t, "sqlite", c.DBConn.Driver().String())
	assert.Nil(t, c.RedisClient)
	assert.IsType(t, availabilityDomain.NoopSlotCache{}, c.SlotCache)
	assert.Same(t, c.InProcessBus, c.EventPublisher)

	health := c.Health.Check(context.Background())
	assert.Equal(t, "healthy", string(health.Status))
}

// A clinic day from template to queue, with events relayed through the
// outbox to an in-process consumer.
func TestContainer_ClinicDay(t *testing.T) {
	ctx := context.Background()
	c := newLocalContainer(t)

	consumer := &countingConsumer{}
	c.InProcessBus.RegisterConsumer(consumer)

	doctor := sharedDomain.Actor{ID: uuid.New(), Role: sharedDomain.RoleDoctor}
	alice := sharedDomain.Actor{ID: uuid.New(), Role: sharedDomain.RolePatient}
	bob := sharedDomain.Actor{ID: uuid.New(), Role: sharedDomain.RolePatient}
	monday := availabilityDomain.NewCalendarDate(2026, time.March, 2).String()

	_, err := c.SetAvailabilityHandler.Handle(ctx, availabilityCommands.SetAvailabilityCommand{
		Actor:               doctor,
		Days:                map[string][]availabilityDomain.Range{"Monday": {{Start: "09:00", End: "10:00"}}},
		SlotDurationMinutes: 20,
	})
	require.NoError(t, err)

	slots, err := c.ResolveAvailableSlotsHandler.Handle(ctx, scheduleQueries.ResolveAvailableSlotsQuery{DoctorID: doctor.ID, Date: monday})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:20", "09:40"}, slots.Slots)

	first, err := c.BookAppointmentHandler.Handle(ctx, scheduleCommands.BookAppointmentCommand{
		Actor: alice, DoctorID: doctor.ID, Date: monday, Time: "09:20",
	})
	require.NoError(t, err)
	_, err = c.BookAppointmentHandler.Handle(ctx, scheduleCommands.BookAppointmentCommand{
		Actor: bob, DoctorID: doctor.ID, Date: monday, Time: "09:20",
	})
	assert.ErrorIs(t, err, schedulingDomain.ErrSlotConflict)
	_, err = c.BookAppointmentHandler.Handle(ctx, scheduleCommands.BookAppointmentCommand{
		Actor: bob, DoctorID: doctor.ID, Date: monday, Time: "09:00",
	})
	require.NoError(t, err)

	_, err = c.ApproveAppointmentHandler.Handle(ctx, scheduleCommands.TransitionCommand{Actor: doctor, AppointmentID: first.ID()})
	require.NoError(t, err)

	slots, err = c.ResolveAvailableSlotsHandler.Handle(ctx, scheduleQueries.ResolveAvailableSlotsQuery{DoctorID: doctor.ID, Date: monday})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:40"}, slots.Slots)

	queue, err := c.ComputeQueueHandler.Handle(ctx, scheduleQueries.ComputeQueueQuery{DoctorID: doctor.ID, Date: monday})
	require.NoError(t, err)
	require.Equal(t, 2, queue.Count)
	assert.Equal(t, "09:00", queue.Entries[0].Time)
	assert.Equal(t, "09:20", queue.Entries[1].Time)
	assert.Equal(t, 20, queue.Entries[1].ETAMinutes)

	require.NoError(t, c.OutboxProcessor.ProcessOnce(ctx))
	assert.Equal(t, []string{
		schedulingDomain.RoutingKeyRequested,
		schedulingDomain.RoutingKeyRequested,
		schedulingDomain.RoutingKeyApproved,
	}, consumer.keys)
}
