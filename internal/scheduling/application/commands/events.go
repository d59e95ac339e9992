package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/clinicq/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// saveEvents writes an aggregate's pending events to the outbox in the
// open unit of work, stamped with the caller's correlation metadata.
func saveEvents(ctx, txCtx context.Context, repo outbox.Repository, userID uuid.UUID, events []sharedDomain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, userID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	return repo.SaveBatch(txCtx, msgs)
}
