package commands

import (
	"context"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
	sharedApplication "github.com/felixgeelhaar/clinicq/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// SetAvailabilityCommand replaces the acting doctor's weekly template.
type SetAvailabilityCommand struct {
	Actor               sharedDomain.Actor
	Days                map[string][]domain.Range
	SlotDurationMinutes int
}

// SetAvailabilityResult echoes the stored template.
type SetAvailabilityResult struct {
	DoctorID            uuid.UUID
	Days                map[string][]domain.Range
	SlotDurationMinutes int
}

// SetAvailabilityHandler upserts a template.
type SetAvailabilityHandler struct {
	templates  domain.TemplateRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	cache      domain.SlotCache
}

// NewSetAvailabilityHandler creates a new set availability handler.
func NewSetAvailabilityHandler(
	templates domain.TemplateRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache domain.SlotCache,
) *SetAvailabilityHandler {
	if cache == nil {
		cache = domain.NoopSlotCache{}
	}
	return &SetAvailabilityHandler{templates: templates, outboxRepo: outboxRepo, uow: uow, cache: cache}
}

// Handle applies the update to the actor's template, creating it on
// first use.
func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (*SetAvailabilityResult, error) {
	if cmd.Actor.Role != sharedDomain.RoleDoctor {
		return nil, sharedDomain.ErrForbidden
	}

	var result *SetAvailabilityResult
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		tmpl, err := h.templates.FindByDoctor(txCtx, cmd.Actor.ID)
		if err != nil {
			return err
		}
		if tmpl == nil {
			tmpl = domain.NewTemplate(cmd.Actor.ID)
		}

		if err := tmpl.Configure(cmd.Days, cmd.SlotDurationMinutes); err != nil {
			return err
		}
		if err := h.templates.Save(txCtx, tmpl); err != nil {
			return err
		}

		if err := saveEvents(ctx, txCtx, h.outboxRepo, cmd.Actor.ID, tmpl.DomainEvents()); err != nil {
			return err
		}

		result = &SetAvailabilityResult{
			DoctorID:            tmpl.DoctorID(),
			Days:                tmpl.DaysByName(),
			SlotDurationMinutes: tmpl.SlotDurationMinutes(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.cache.InvalidateDoctor(ctx, cmd.Actor.ID)
	return result, nil
}
