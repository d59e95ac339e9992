package commands

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/clinicq/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
)

// ErrPatientRequired is returned when an admin books without naming the
// patient.
var ErrPatientRequired = errors.New("patient id is required when booking on behalf of a patient")

// BookAppointmentCommand requests a slot. Patients book for themselves;
// an admin books on behalf of PatientID.
type BookAppointmentCommand struct {
	Actor     sharedDomain.Actor
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      string
	Time      string
}

// BookAppointmentHandler handles the BookAppointmentCommand.
type BookAppointmentHandler struct {
	ledger     domain.Ledger
	templates  availability.TemplateRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	cache      availability.SlotCache
	metrics    observability.Metrics
}

// NewBookAppointmentHandler creates a new BookAppointmentHandler. cache and
// metrics may be nil.
func NewBookAppointmentHandler(
	ledger domain.Ledger,
	templates availability.TemplateRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache availability.SlotCache,
	metrics observability.Metrics,
) *BookAppointmentHandler {
	if cache == nil {
		cache = availability.NoopSlotCache{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &BookAppointmentHandler{
		ledger:     ledger,
		templates:  templates,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
		metrics:    metrics,
	}
}

// Handle creates a Pending appointment. The ledger's conditional insert
// decides races; the pre-check only fails fast.
func (h *BookAppointmentHandler) Handle(ctx context.Context, cmd BookAppointmentCommand) (*domain.Appointment, error) {
	patientID, err := bookingPatient(cmd)
	if err != nil {
		return nil, err
	}
	date, err := availability.ParseCalendarDate(cmd.Date)
	if err != nil {
		return nil, err
	}
	at, err := availability.ParseClockTime(cmd.Time)
	if err != nil {
		return nil, err
	}

	var appt *domain.Appointment
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.ledger.FindActiveAt(txCtx, cmd.DoctorID, date, at, uuid.Nil)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrSlotConflict
		}

		tmpl, err := h.templates.FindByDoctor(txCtx, cmd.DoctorID)
		if err != nil {
			return err
		}
		if tmpl != nil {
			// An empty lattice accepts any time.
			slots := tmpl.SlotsFor(date)
			if len(slots) > 0 && !slices.Contains(slots, at.String()) {
				return domain.ErrOutsideAvailability
			}
		}

		appt = domain.NewAppointment(patientID, cmd.DoctorID, date, at)
		if err := h.ledger.Insert(txCtx, appt); err != nil {
			return err
		}
		return saveEvents(ctx, txCtx, h.outboxRepo, cmd.Actor.ID, appt.DomainEvents())
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			h.metrics.Counter(observability.MetricBookingConflicts, 1)
		}
		return nil, err
	}

	h.metrics.Counter(observability.MetricBookingsCreated, 1)
	h.cache.InvalidateDate(ctx, cmd.DoctorID, date)
	return appt, nil
}

func bookingPatient(cmd BookAppointmentCommand) (uuid.UUID, error) {
	switch cmd.Actor.Role {
	case sharedDomain.RolePatient:
		if cmd.PatientID != uuid.Nil && cmd.PatientID != cmd.Actor.ID {
			return uuid.Nil, domain.ErrForbidden
		}
		return cmd.Actor.ID, nil
	case sharedDomain.RoleAdmin:
		if cmd.PatientID == uuid.Nil {
			return uuid.Nil, ErrPatientRequired
		}
		return cmd.PatientID, nil
	case sharedDomain.RoleDoctor:
		return uuid.Nil, domain.ErrForbidden
	default:
		return uuid.Nil, sharedDomain.ErrUnknownRole
	}
}
