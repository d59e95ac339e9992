package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/clinicq/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
)

// RescheduleAppointmentCommand moves an appointment. A blank Date or Time
// keeps the current value.
type RescheduleAppointmentCommand struct {
	Actor         sharedDomain.Actor
	AppointmentID uuid.UUID
	Date          string
	Time          string
}

// RescheduleAppointmentHandler re-runs the slot conflict check against the
// target, ignoring the appointment's own slot, then moves it in place.
// Availability is not re-validated. Every attempt is audited, including
// rejected ones.
type RescheduleAppointmentHandler struct {
	ledger     domain.Ledger
	attempts   domain.RescheduleAttemptRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	cache      availability.SlotCache
	logger     *slog.Logger
}

// NewRescheduleAppointmentHandler creates a new reschedule handler.
func NewRescheduleAppointmentHandler(
	ledger domain.Ledger,
	attempts domain.RescheduleAttemptRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache availability.SlotCache,
	logger *slog.Logger,
) *RescheduleAppointmentHandler {
	if cache == nil {
		cache = availability.NoopSlotCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RescheduleAppointmentHandler{
		ledger:     ledger,
		attempts:   attempts,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
		logger:     logger,
	}
}

// Handle moves the appointment to the requested date and time.
func (h *RescheduleAppointmentHandler) Handle(ctx context.Context, cmd RescheduleAppointmentCommand) (*domain.Appointment, error) {
	var (
		appt       *domain.Appointment
		rejected   *domain.RescheduleAttempt
		fromDate   availability.CalendarDate
		targetDate availability.CalendarDate
	)

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		a, err := h.ledger.FindByID(txCtx, cmd.AppointmentID)
		if err != nil {
			return err
		}
		if err := a.CanReschedule(cmd.Actor); err != nil {
			return err
		}
		date, at, err := a.ResolveTarget(cmd.Date, cmd.Time)
		if err != nil {
			return err
		}

		occupant, err := h.ledger.FindActiveAt(txCtx, a.DoctorID(), date, at, a.ID())
		if err != nil {
			return err
		}
		if occupant != nil {
			attempt := domain.NewRescheduleAttempt(a, cmd.Actor.ID, date.String(), at.String(), domain.ErrSlotConflict)
			rejected = &attempt
			return domain.ErrSlotConflict
		}

		attempt := domain.NewRescheduleAttempt(a, cmd.Actor.ID, date.String(), at.String(), nil)
		fromDate, targetDate = a.Date(), date
		if err := a.Reschedule(cmd.Actor, date, at); err != nil {
			return err
		}
		if err := h.ledger.Update(txCtx, a); err != nil {
			if errors.Is(err, domain.ErrSlotConflict) {
				attempt.Success = false
				attempt.FailureReason = err.Error()
				rejected = &attempt
			}
			return err
		}
		if h.attempts != nil {
			if err := h.attempts.Create(txCtx, attempt); err != nil {
				return err
			}
		}
		appt = a
		return saveEvents(ctx, txCtx, h.outboxRepo, cmd.Actor.ID, a.DomainEvents())
	})
	if err != nil {
		if rejected != nil && h.attempts != nil {
			// The transaction rolled back, so the audit row goes in on its own.
			if auditErr := h.attempts.Create(ctx, *rejected); auditErr != nil {
				h.logger.WarnContext(ctx, "failed to record rejected reschedule",
					"appointment_id", cmd.AppointmentID, "error", auditErr)
			}
		}
		return nil, err
	}

	h.cache.InvalidateDate(ctx, appt.DoctorID(), fromDate)
	if targetDate != fromDate {
		h.cache.InvalidateDate(ctx, appt.DoctorID(), targetDate)
	}
	return appt, nil
}
