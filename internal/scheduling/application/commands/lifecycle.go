package commands

import (
	"context"

	"github.com/google/uuid"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/clinicq/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
)

// TransitionCommand identifies an appointment and who is acting on it.
type TransitionCommand struct {
	Actor         sharedDomain.Actor
	AppointmentID uuid.UUID
}

// transitioner loads an appointment, applies a state change and persists
// it with its events in one unit of work.
type transitioner struct {
	ledger     domain.Ledger
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	cache      availability.SlotCache
}

func newTransitioner(ledger domain.Ledger, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, cache availability.SlotCache) transitioner {
	if cache == nil {
		cache = availability.NoopSlotCache{}
	}
	return transitioner{ledger: ledger, outboxRepo: outboxRepo, uow: uow, cache: cache}
}

func (t transitioner) apply(
	ctx context.Context,
	cmd TransitionCommand,
	change func(*domain.Appointment, sharedDomain.Actor) error,
) (*domain.Appointment, error) {
	var appt *domain.Appointment
	err := sharedApplication.WithUnitOfWork(ctx, t.uow, func(txCtx context.Context) error {
		a, err := t.ledger.FindByID(txCtx, cmd.AppointmentID)
		if err != nil {
			return err
		}
		if err := change(a, cmd.Actor); err != nil {
			return err
		}
		appt = a

		// Nothing happened, e.g. cancelling twice.
		if len(a.DomainEvents()) == 0 {
			return nil
		}
		if err := t.ledger.Update(txCtx, a); err != nil {
			return err
		}
		return saveEvents(ctx, txCtx, t.outboxRepo, cmd.Actor.ID, a.DomainEvents())
	})
	if err != nil {
		return nil, err
	}

	t.cache.InvalidateDate(ctx, appt.DoctorID(), appt.Date())
	return appt, nil
}

// ApproveAppointmentHandler moves a Pending request to Scheduled.
type ApproveAppointmentHandler struct{ t transitioner }

// NewApproveAppointmentHandler creates a new approve handler.
func NewApproveAppointmentHandler(ledger domain.Ledger, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, cache availability.SlotCache) *ApproveAppointmentHandler {
	return &ApproveAppointmentHandler{t: newTransitioner(ledger, outboxRepo, uow, cache)}
}

// Handle approves the appointment named by cmd.
func (h *ApproveAppointmentHandler) Handle(ctx context.Context, cmd TransitionCommand) (*domain.Appointment, error) {
	return h.t.apply(ctx, cmd, (*domain.Appointment).Approve)
}

// DeclineAppointmentHandler cancels a Pending request on the doctor's behalf.
type DeclineAppointmentHandler struct{ t transitioner }

// NewDeclineAppointmentHandler creates a new decline handler.
func NewDeclineAppointmentHandler(ledger domain.Ledger, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, cache availability.SlotCache) *DeclineAppointmentHandler {
	return &DeclineAppointmentHandler{t: newTransitioner(ledger, outboxRepo, uow, cache)}
}

// Handle declines the request named by cmd.
func (h *DeclineAppointmentHandler) Handle(ctx context.Context, cmd TransitionCommand) (*domain.Appointment, error) {
	return h.t.apply(ctx, cmd, (*domain.Appointment).Decline)
}

// CancelAppointmentHandler cancels for the owning patient or an admin.
// Cancelling twice succeeds.
type CancelAppointmentHandler struct{ t transitioner }

// NewCancelAppointmentHandler creates a new cancel handler.
func NewCancelAppointmentHandler(ledger domain.Ledger, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, cache availability.SlotCache) *CancelAppointmentHandler {
	return &CancelAppointmentHandler{t: newTransitioner(ledger, outboxRepo, uow, cache)}
}

// Handle cancels the appointment named by cmd.
func (h *CancelAppointmentHandler) Handle(ctx context.Context, cmd TransitionCommand) (*domain.Appointment, error) {
	return h.t.apply(ctx, cmd, (*domain.Appointment).Cancel)
}

// CompleteAppointmentHandler closes a Scheduled visit as Completed.
type CompleteAppointmentHandler struct{ t transitioner }

// NewCompleteAppointmentHandler creates a new complete handler.
func NewCompleteAppointmentHandler(ledger domain.Ledger, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, cache availability.SlotCache) *CompleteAppointmentHandler {
	return &CompleteAppointmentHandler{t: newTransitioner(ledger, outboxRepo, uow, cache)}
}

// Handle completes the appointment named by cmd.
func (h *CompleteAppointmentHandler) Handle(ctx context.Context, cmd TransitionCommand) (*domain.Appointment, error) {
	return h.t.apply(ctx, cmd, (*domain.Appointment).Complete)
}

// MarkNoShowHandler closes a Scheduled visit the patient missed.
type MarkNoShowHandler struct{ t transitioner }

// NewMarkNoShowHandler creates a new no-show handler.
func NewMarkNoShowHandler(ledger domain.Ledger, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, cache availability.SlotCache) *MarkNoShowHandler {
	return &MarkNoShowHandler{t: newTransitioner(ledger, outboxRepo, uow, cache)}
}

// Handle marks the appointment named by cmd as a no-show.
func (h *MarkNoShowHandler) Handle(ctx context.Context, cmd TransitionCommand) (*domain.Appointment, error) {
	return h.t.apply(ctx, cmd, (*domain.Appointment).MarkNoShow)
}
