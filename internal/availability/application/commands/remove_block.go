package commands

import (
	"context"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
	sharedApplication "github.com/felixgeelhaar/clinicq/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RemoveBlockCommand deletes one of the acting doctor's blocks.
type RemoveBlockCommand struct {
	Actor   sharedDomain.Actor
	BlockID uuid.UUID
}

// RemoveBlockHandler handles the RemoveBlockCommand. A block owned by
// another doctor is reported as not found.
type RemoveBlockHandler struct {
	blocks     domain.BlockRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	cache      domain.SlotCache
}

// NewRemoveBlockHandler creates a new remove block handler.
func NewRemoveBlockHandler(
	blocks domain.BlockRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache domain.SlotCache,
) *RemoveBlockHandler {
	if cache == nil {
		cache = domain.NoopSlotCache{}
	}
	return &RemoveBlockHandler{blocks: blocks, outboxRepo: outboxRepo, uow: uow, cache: cache}
}

// Handle deletes one of the actor's own blocks.
func (h *RemoveBlockHandler) Handle(ctx context.Context, cmd RemoveBlockCommand) error {
	if cmd.Actor.Role != sharedDomain.RoleDoctor {
		return sharedDomain.ErrForbidden
	}

	var removed *domain.Block
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		block, err := h.blocks.FindByID(txCtx, cmd.BlockID)
		if err != nil {
			return err
		}
		if block == nil || !block.OwnedBy(cmd.Actor.ID) {
			return domain.ErrBlockNotFound
		}

		ok, err := h.blocks.Delete(txCtx, block.ID(), cmd.Actor.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrBlockNotFound
		}

		block.Remove()
		removed = block
		return saveEvents(ctx, txCtx, h.outboxRepo, cmd.Actor.ID, block.DomainEvents())
	})
	if err != nil {
		return err
	}

	h.cache.InvalidateDate(ctx, cmd.Actor.ID, removed.Date())
	return nil
}
