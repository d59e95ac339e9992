package application

import (
	"context"

	"github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata builds metadata for events raised on behalf of userID.
// The request's correlation ID is reused when it is a UUID so that outbox
// messages can be traced back to the HTTP or CLI call that produced them.
func NewEventMetadata(ctx context.Context, userID uuid.UUID) domain.EventMetadata {
	correlationID := uuid.New()
	if raw := observability.CorrelationIDFromContext(ctx); raw != "" {
		if parsed, err := uuid.Parse(raw); err == nil {
			correlationID = parsed
		}
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New(),
		UserID:        userID,
	}
}

// ApplyEventMetadata stamps metadata on every event that accepts it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
