package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotTaken struct {
	domain.BaseEvent
	Time string `json:"time"`
}

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	before := time.Now().UTC()

	event := domain.NewBaseEvent(aggregateID, "Appointment", "appointment.requested")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "Appointment", event.AggregateType())
	assert.Equal(t, "appointment.requested", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	md := domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		UserID:        uuid.New(),
	}

	event := domain.NewBaseEvent(uuid.New(), "Appointment", "appointment.requested")
	event.SetMetadata(md)

	assert.Equal(t, md, event.Metadata())
}

func TestBaseEvent_PayloadOnlyCarriesExportedFields(t *testing.T) {
	event := slotTaken{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "Appointment", "appointment.requested"),
		Time:      "09:15",
	}

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	assert.JSONEq(t, `{"time":"09:15"}`, string(raw))
}
