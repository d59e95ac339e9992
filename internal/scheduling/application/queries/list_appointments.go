package queries

import (
	"context"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
)

// ListAppointmentsQuery lists what the actor may see. Status and Date are
// optional filters.
type ListAppointmentsQuery struct {
	Actor  sharedDomain.Actor
	Status string
	Date   string
	Limit  int
}

// ListAppointmentsHandler lists appointments visible to the actor.
type ListAppointmentsHandler struct {
	ledger domain.Ledger
}

// NewListAppointmentsHandler creates a new list handler.
func NewListAppointmentsHandler(ledger domain.Ledger) *ListAppointmentsHandler {
	return &ListAppointmentsHandler{ledger: ledger}
}

// Handle scopes patients and doctors to their own appointments; admins
// see everyone's.
func (h *ListAppointmentsHandler) Handle(ctx context.Context, q ListAppointmentsQuery) ([]AppointmentDTO, error) {
	filter := domain.ListFilter{Limit: q.Limit}

	switch q.Actor.Role {
	case sharedDomain.RolePatient:
		filter.PatientID = &q.Actor.ID
	case sharedDomain.RoleDoctor:
		filter.DoctorID = &q.Actor.ID
	case sharedDomain.RoleAdmin:
	default:
		return nil, sharedDomain.ErrUnknownRole
	}

	if q.Status != "" {
		status, err := domain.ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Statuses = []domain.Status{status}
	}
	if q.Date != "" {
		date, err := availability.ParseCalendarDate(q.Date)
		if err != nil {
			return nil, err
		}
		filter.Date = &date
	}

	appts, err := h.ledger.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toAppointmentDTOs(appts), nil
}

// ListPendingRequestsQuery asks for the doctor's open requests.
type ListPendingRequestsQuery struct {
	Actor sharedDomain.Actor
}

// ListPendingRequestsHandler is the doctor's inbox of requests awaiting
// approval.
type ListPendingRequestsHandler struct {
	ledger domain.Ledger
}

// NewListPendingRequestsHandler creates a new pending requests handler.
func NewListPendingRequestsHandler(ledger domain.Ledger) *ListPendingRequestsHandler {
	return &ListPendingRequestsHandler{ledger: ledger}
}

func (h *ListPendingRequestsHandler) Handle(ctx context.Context, q ListPendingRequestsQuery) ([]AppointmentDTO, error) {
	if q.Actor.Role != sharedDomain.RoleDoctor {
		return nil, domain.ErrForbidden
	}
	appts, err := h.ledger.List(ctx, domain.ListFilter{
		DoctorID: &q.Actor.ID,
		Statuses: []domain.Status{domain.StatusPending},
	})
	if err != nil {
		return nil, err
	}
	return toAppointmentDTOs(appts), nil
}
