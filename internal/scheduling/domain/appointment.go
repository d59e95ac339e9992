package domain

import (
	"time"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
)

// Appointment is one booking in the ledger. It occupies (doctor, date,
// time) for as long as its status is not Cancelled.
type Appointment struct {
	sharedDomain.BaseAggregateRoot
	patientID       uuid.UUID
	doctorID        uuid.UUID
	date            availability.CalendarDate
	at              availability.ClockTime
	status          Status
	rescheduledFrom *uuid.UUID
	remindedAt      *time.Time
}

// NewAppointment creates a Pending request and raises AppointmentRequested.
func NewAppointment(patientID, doctorID uuid.UUID, date availability.CalendarDate, at availability.ClockTime) *Appointment {
	a := &Appointment{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		patientID:         patientID,
		doctorID:          doctorID,
		date:              date,
		at:                at,
		status:            StatusPending,
	}
	a.AddDomainEvent(NewAppointmentRequested(a))
	return a
}

// Snapshot is the stored form of an appointment.
type Snapshot struct {
	ID              uuid.UUID
	PatientID       uuid.UUID
	DoctorID        uuid.UUID
	Date            availability.CalendarDate
	Time            availability.ClockTime
	Status          Status
	RescheduledFrom *uuid.UUID
	RemindedAt      *time.Time
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RehydrateAppointment restores an appointment without raising events.
func RehydrateAppointment(s Snapshot) *Appointment {
	return &Appointment{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt), s.Version),
		patientID:       s.PatientID,
		doctorID:        s.DoctorID,
		date:            s.Date,
		at:              s.Time,
		status:          s.Status,
		rescheduledFrom: s.RescheduledFrom,
		remindedAt:      s.RemindedAt,
	}
}

func (a *Appointment) PatientID() uuid.UUID            { return a.patientID }
func (a *Appointment) DoctorID() uuid.UUID             { return a.doctorID }
func (a *Appointment) Date() availability.CalendarDate { return a.date }
func (a *Appointment) Time() availability.ClockTime    { return a.at }
func (a *Appointment) Status() Status                  { return a.status }
func (a *Appointment) RescheduledFrom() *uuid.UUID     { return a.rescheduledFrom }
func (a *Appointment) RemindedAt() *time.Time          { return a.remindedAt }
func (a *Appointment) IsActive() bool                  { return a.status.IsActive() }

// Approve accepts a Pending request. Only the appointment's doctor may.
func (a *Appointment) Approve(actor sharedDomain.Actor) error {
	if err := a.authorizeDoctor(actor); err != nil {
		return err
	}
	if a.status != StatusPending {
		return ErrInvalidState
	}
	a.transition(StatusScheduled)
	a.AddDomainEvent(NewAppointmentApproved(a))
	return nil
}

// Decline rejects a Pending request, freeing the slot.
func (a *Appointment) Decline(actor sharedDomain.Actor) error {
	if err := a.authorizeDoctor(actor); err != nil {
		return err
	}
	if a.status != StatusPending {
		return ErrInvalidState
	}
	a.transition(StatusCancelled)
	a.AddDomainEvent(NewAppointmentDeclined(a))
	return nil
}

// ResolveTarget merges a requested date and time with the current ones;
// a blank label keeps the current value.
func (a *Appointment) ResolveTarget(date, at string) (availability.CalendarDate, availability.ClockTime, error) {
	targetDate, targetTime := a.date, a.at
	if date != "" {
		d, err := availability.ParseCalendarDate(date)
		if err != nil {
			return availability.CalendarDate{}, 0, err
		}
		targetDate = d
	}
	if at != "" {
		t, err := availability.ParseClockTime(at)
		if err != nil {
			return availability.CalendarDate{}, 0, err
		}
		targetTime = t
	}
	return targetDate, targetTime, nil
}

// CanReschedule reports whether actor may move or cancel the appointment.
func (a *Appointment) CanReschedule(actor sharedDomain.Actor) error {
	return a.authorizeOwnerOrAdmin(actor)
}

// Reschedule moves the appointment in place. RescheduledFrom is stamped
// with the appointment's own ID the first time, so every hop points back
// to the original booking. Status is left as it is. The caller checks the
// target for conflicts.
func (a *Appointment) Reschedule(actor sharedDomain.Actor, date availability.CalendarDate, at availability.ClockTime) error {
	if err := a.authorizeOwnerOrAdmin(actor); err != nil {
		return err
	}

	prevDate, prevTime := a.date.String(), a.at.String()
	a.date = date
	a.at = at
	if a.rescheduledFrom == nil {
		id := a.ID()
		a.rescheduledFrom = &id
	}
	a.Touch()
	a.AddDomainEvent(NewAppointmentRescheduled(a, prevDate, prevTime))
	return nil
}

// Cancel is idempotent: cancelling a Cancelled appointment succeeds and
// records nothing.
func (a *Appointment) Cancel(actor sharedDomain.Actor) error {
	if err := a.authorizeOwnerOrAdmin(actor); err != nil {
		return err
	}
	if a.status == StatusCancelled {
		return nil
	}
	a.transition(StatusCancelled)
	a.AddDomainEvent(NewAppointmentCancelled(a, actor.Role))
	return nil
}

// Complete closes a Scheduled visit.
func (a *Appointment) Complete(actor sharedDomain.Actor) error {
	if err := a.authorizeDoctor(actor); err != nil {
		return err
	}
	if a.status != StatusScheduled {
		return ErrInvalidState
	}
	a.transition(StatusCompleted)
	a.AddDomainEvent(NewAppointmentCompleted(a))
	return nil
}

// MarkNoShow records that the patient did not attend a Scheduled visit.
func (a *Appointment) MarkNoShow(actor sharedDomain.Actor) error {
	if err := a.authorizeDoctor(actor); err != nil {
		return err
	}
	if a.status != StatusScheduled {
		return ErrInvalidState
	}
	a.transition(StatusNoShow)
	a.AddDomainEvent(NewAppointmentNoShow(a))
	return nil
}

// MarkReminded stamps the reminder time. Date, time and status are
// untouched.
func (a *Appointment) MarkReminded(at time.Time) {
	stamp := at.UTC()
	a.remindedAt = &stamp
	a.AddDomainEvent(NewAppointmentReminderDue(a))
}

// CanView reports whether actor may read the appointment.
func (a *Appointment) CanView(actor sharedDomain.Actor) bool {
	switch actor.Role {
	case sharedDomain.RoleAdmin:
		return true
	case sharedDomain.RoleDoctor:
		return actor.Is(a.doctorID)
	case sharedDomain.RolePatient:
		return actor.Is(a.patientID)
	default:
		return false
	}
}

func (a *Appointment) transition(to Status) {
	a.status = to
	a.Touch()
}

func (a *Appointment) authorizeDoctor(actor sharedDomain.Actor) error {
	switch actor.Role {
	case sharedDomain.RoleDoctor:
		if !actor.Is(a.doctorID) {
			return ErrForbidden
		}
		return nil
	case sharedDomain.RolePatient, sharedDomain.RoleAdmin:
		return ErrForbidden
	default:
		return sharedDomain.ErrUnknownRole
	}
}

func (a *Appointment) authorizeOwnerOrAdmin(actor sharedDomain.Actor) error {
	switch actor.Role {
	case sharedDomain.RoleAdmin:
		return nil
	case sharedDomain.RolePatient:
		if !actor.Is(a.patientID) {
			return ErrForbidden
		}
		return nil
	case sharedDomain.RoleDoctor:
		return ErrForbidden
	default:
		return sharedDomain.ErrUnknownRole
	}
}
