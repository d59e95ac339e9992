package domain

import (
	"time"

	"github.com/google/uuid"
)

// RescheduleAttempt audits one request to move an appointment, including
// those rejected for a conflict.
type RescheduleAttempt struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	ActorID       uuid.UUID
	AttemptedAt   time.Time
	FromDate      string
	FromTime      string
	ToDate        string
	ToTime        string
	Success       bool
	FailureReason string
}

// NewRescheduleAttempt records a move from a's current slot.
func NewRescheduleAttempt(a *Appointment, actorID uuid.UUID, toDate, toTime string, failure error) RescheduleAttempt {
	attempt := RescheduleAttempt{
		ID:            uuid.New(),
		AppointmentID: a.ID(),
		ActorID:       actorID,
		AttemptedAt:   time.Now().UTC(),
		FromDate:      a.Date().String(),
		FromTime:      a.Time().String(),
		ToDate:        toDate,
		ToTime:        toTime,
		Success:       failure == nil,
	}
	if failure != nil {
		attempt.FailureReason = failure.Error()
	}
	return attempt
}
