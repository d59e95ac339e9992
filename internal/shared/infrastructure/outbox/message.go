package outbox

import (
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
)

// Message is a domain event waiting to be published.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	EventType        string
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage serializes event into an outbox row.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.RoutingKey(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// NewMessages converts a batch of events, stopping at the first failure.
func NewMessages(events []domain.DomainEvent) ([]*Message, error) {
	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// envelope is the wire shape consumers decode into eventbus.ConsumedEvent.
type envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// Envelope wraps the payload with the routing information a consumer
// needs to dispatch it.
func (m *Message) Envelope() ([]byte, error) {
	meta := m.Metadata
	if len(meta) == 0 {
		meta = nil
	}
	return json.Marshal(envelope{
		EventID:       m.EventID,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		RoutingKey:    m.RoutingKey,
		OccurredAt:    m.CreatedAt,
		Payload:       m.Payload,
		Metadata:      meta,
	})
}

// IsPublished reports whether the message reached the broker.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry reports whether another publish attempt is allowed.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}
