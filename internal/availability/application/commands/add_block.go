package commands

import (
	"context"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
	sharedApplication "github.com/felixgeelhaar/clinicq/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// AddBlockCommand takes [Start, End) on Date out of the acting doctor's
// availability.
type AddBlockCommand struct {
	Actor  sharedDomain.Actor
	Date   string
	Start  string
	End    string
	Reason string
}

// AddBlockResult carries the new block's id.
type AddBlockResult struct {
	BlockID uuid.UUID
}

// AddBlockHandler handles the AddBlockCommand.
type AddBlockHandler struct {
	blocks     domain.BlockRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	cache      domain.SlotCache
}

// NewAddBlockHandler creates a new add block handler.
func NewAddBlockHandler(
	blocks domain.BlockRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache domain.SlotCache,
) *AddBlockHandler {
	if cache == nil {
		cache = domain.NoopSlotCache{}
	}
	return &AddBlockHandler{blocks: blocks, outboxRepo: outboxRepo, uow: uow, cache: cache}
}

// Handle validates and stores the block, then invalidates its date.
func (h *AddBlockHandler) Handle(ctx context.Context, cmd AddBlockCommand) (*AddBlockResult, error) {
	if cmd.Actor.Role != sharedDomain.RoleDoctor {
		return nil, sharedDomain.ErrForbidden
	}

	date, err := domain.ParseCalendarDate(cmd.Date)
	if err != nil {
		return nil, err
	}
	start, err := domain.ParseClockTime(cmd.Start)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseEndClockTime(cmd.End)
	if err != nil {
		return nil, err
	}

	block, err := domain.NewBlock(cmd.Actor.ID, date, start, end, cmd.Reason)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.blocks.Save(txCtx, block); err != nil {
			return err
		}
		return saveEvents(ctx, txCtx, h.outboxRepo, cmd.Actor.ID, block.DomainEvents())
	})
	if err != nil {
		return nil, err
	}

	h.cache.InvalidateDate(ctx, cmd.Actor.ID, date)
	return &AddBlockResult{BlockID: block.ID()}, nil
}
