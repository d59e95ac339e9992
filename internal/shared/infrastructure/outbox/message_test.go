package outbox

import (
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotHeld struct {
	domain.BaseEvent
	Time string `json:"time"`
}

func newSlotHeld(aggregateID uuid.UUID, at string) *slotHeld {
	return &slotHeld{
		BaseEvent: domain.NewBaseEvent(aggregateID, "Appointment", "appointment.requested"),
		Time:      at,
	}
}

func TestNewMessage(t *testing.T) {
	aggregateID := uuid.New()
	event := newSlotHeld(aggregateID, "09:15")
	event.SetMetadata(domain.EventMetadata{UserID: uuid.New()})

	msg, err := NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, "Appointment", msg.AggregateType)
	assert.Equal(t, aggregateID, msg.AggregateID)
	assert.Equal(t, "appointment.requested", msg.EventType)
	assert.Equal(t, "appointment.requested", msg.RoutingKey)
	assert.JSONEq(t, `{"time":"09:15"}`, string(msg.Payload))
	assert.Contains(t, string(msg.Metadata), event.Metadata().UserID.String())
	assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
	assert.False(t, msg.IsPublished())
	assert.True(t, msg.CanRetry(1))
}

func TestNewMessages(t *testing.T) {
	id := uuid.New()
	msgs, err := NewMessages([]domain.DomainEvent{newSlotHeld(id, "09:00"), newSlotHeld(id, "09:15")})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.NotEqual(t, msgs[0].EventID, msgs[1].EventID)
}

func TestMessage_Envelope(t *testing.T) {
	event := newSlotHeld(uuid.New(), "10:30")
	msg, err := NewMessage(event)
	require.NoError(t, err)

	body, err := msg.Envelope()
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.JSONEq(t, `"appointment.requested"`, string(decoded["routing_key"]))
	assert.JSONEq(t, `"`+event.AggregateID().String()+`"`, string(decoded["aggregate_id"]))
	assert.JSONEq(t, `{"time":"10:30"}`, string(decoded["payload"]))
}
