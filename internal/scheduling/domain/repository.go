package domain

import (
	"context"
	"time"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/google/uuid"
)

// ListFilter narrows Ledger.List. Zero fields match everything.
type ListFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Statuses  []Status
	Date      *availability.CalendarDate
	Limit     int
}

// Ledger is the authoritative store of appointments.
type Ledger interface {
	// Insert stores a new appointment only if no live appointment holds
	// its doctor, date and time. The check and the write are one atomic
	// statement; the loser of a race gets ErrSlotConflict.
	Insert(ctx context.Context, a *Appointment) error

	// Update persists a changed appointment. Moving onto a taken slot
	// yields ErrSlotConflict.
	Update(ctx context.Context, a *Appointment) error

	// FindByID returns ErrAppointmentNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindActiveAt returns the live appointment at the slot, ignoring
	// excludeID, or nil when the slot is free.
	FindActiveAt(ctx context.Context, doctorID uuid.UUID, date availability.CalendarDate, at availability.ClockTime, excludeID uuid.UUID) (*Appointment, error)

	// ListActiveByDoctorDate returns the day's live appointments by time.
	ListActiveByDoctorDate(ctx context.Context, doctorID uuid.UUID, date availability.CalendarDate) ([]*Appointment, error)

	// List returns matching appointments ordered by date then time.
	List(ctx context.Context, filter ListFilter) ([]*Appointment, error)

	// ListDueForReminder returns live appointments on date that have not
	// been reminded.
	ListDueForReminder(ctx context.Context, date availability.CalendarDate) ([]*Appointment, error)

	// MarkReminded stamps reminded_at only.
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RescheduleAttemptRepository persists the reschedule audit trail.
type RescheduleAttemptRepository interface {
	Create(ctx context.Context, attempt RescheduleAttempt) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]RescheduleAttempt, error)
}
