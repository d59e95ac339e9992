package application

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookedEvent struct {
	domain.BaseEvent
}

func TestNewEventMetadata(t *testing.T) {
	t.Run("generates a correlation id when none is in context", func(t *testing.T) {
		userID := uuid.New()

		md := NewEventMetadata(context.Background(), userID)

		assert.Equal(t, userID, md.UserID)
		assert.NotEqual(t, uuid.Nil, md.CorrelationID)
		assert.NotEqual(t, uuid.Nil, md.CausationID)
	})

	t.Run("reuses the request correlation id", func(t *testing.T) {
		corr := uuid.New()
		ctx := observability.WithCorrelationID(context.Background(), corr.String())

		md := NewEventMetadata(ctx, uuid.New())

		assert.Equal(t, corr, md.CorrelationID)
	})

	t.Run("ignores correlation ids that are not uuids", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "cli-42")

		md := NewEventMetadata(ctx, uuid.New())

		assert.NotEqual(t, uuid.Nil, md.CorrelationID)
	})
}

func TestApplyEventMetadata(t *testing.T) {
	t.Run("stamps every event", func(t *testing.T) {
		e1 := &bookedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Appointment", "appointment.requested")}
		e2 := &bookedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Appointment", "appointment.approved")}
		md := NewEventMetadata(context.Background(), uuid.New())

		ApplyEventMetadata([]domain.DomainEvent{e1, e2}, md)

		assert.Equal(t, md, e1.Metadata())
		assert.Equal(t, md, e2.Metadata())
	})

	t.Run("skips value events without a setter", func(t *testing.T) {
		e := bookedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Appointment", "appointment.requested")}
		md := NewEventMetadata(context.Background(), uuid.New())

		ApplyEventMetadata([]domain.DomainEvent{e}, md)

		assert.Equal(t, domain.EventMetadata{}, e.Metadata())
	})

	t.Run("handles nil slices", func(t *testing.T) {
		require.NotPanics(t, func() {
			ApplyEventMetadata(nil, domain.EventMetadata{})
		})
	})
}
