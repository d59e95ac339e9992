package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
)

// RescheduleAttemptDTO is the read model of one recorded attempt.
type RescheduleAttemptDTO struct {
	ID            uuid.UUID `json:"id"`
	ActorID       uuid.UUID `json:"actorId"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Success       bool      `json:"success"`
	FailureReason string    `json:"failureReason,omitempty"`
	AttemptedAt   time.Time `json:"attemptedAt"`
}

type ListRescheduleAttemptsQuery struct {
	Actor         sharedDomain.Actor
	AppointmentID uuid.UUID
}

// ListRescheduleAttemptsHandler returns an appointment's move history to
// anyone who may view the appointment.
type ListRescheduleAttemptsHandler struct {
	ledger   domain.Ledger
	attempts domain.RescheduleAttemptRepository
}

// NewListRescheduleAttemptsHandler creates a new attempts handler.
func NewListRescheduleAttemptsHandler(ledger domain.Ledger, attempts domain.RescheduleAttemptRepository) *ListRescheduleAttemptsHandler {
	return &ListRescheduleAttemptsHandler{ledger: ledger, attempts: attempts}
}

// Handle returns the attempts for an appointment the actor may see.
func (h *ListRescheduleAttemptsHandler) Handle(ctx context.Context, q ListRescheduleAttemptsQuery) ([]RescheduleAttemptDTO, error) {
	appt, err := h.ledger.FindByID(ctx, q.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !appt.CanView(q.Actor) {
		return nil, domain.ErrForbidden
	}

	attempts, err := h.attempts.ListByAppointment(ctx, q.AppointmentID)
	if err != nil {
		return nil, err
	}
	dtos := make([]RescheduleAttemptDTO, len(attempts))
	for i, a := range attempts {
		dtos[i] = RescheduleAttemptDTO{
			ID:            a.ID,
			ActorID:       a.ActorID,
			From:          a.FromDate + " " + a.FromTime,
			To:            a.ToDate + " " + a.ToTime,
			Success:       a.Success,
			FailureReason: a.FailureReason,
			AttemptedAt:   a.AttemptedAt,
		}
	}
	return dtos, nil
}
