package domain

import (
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Appointment"

	RoutingKeyRequested   = "appointment.requested"
	RoutingKeyApproved    = "appointment.approved"
	RoutingKeyDeclined    = "appointment.declined"
	RoutingKeyRescheduled = "appointment.rescheduled"
	RoutingKeyCancelled   = "appointment.cancelled"
	RoutingKeyCompleted   = "appointment.completed"
	RoutingKeyNoShow      = "appointment.no_show"
	RoutingKeyReminderDue = "appointment.reminder_due"
)

// RoutingKeys lists every appointment event, for consumer registration.
var RoutingKeys = []string{
	RoutingKeyRequested,
	RoutingKeyApproved,
	RoutingKeyDeclined,
	RoutingKeyRescheduled,
	RoutingKeyCancelled,
	RoutingKeyCompleted,
	RoutingKeyNoShow,
	RoutingKeyReminderDue,
}

// AppointmentDetails is the state carried by every appointment event.
type AppointmentDetails struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
}

func detailsOf(a *Appointment) AppointmentDetails {
	return AppointmentDetails{
		AppointmentID: a.ID(),
		PatientID:     a.PatientID(),
		DoctorID:      a.DoctorID(),
		Date:          a.Date().String(),
		Time:          a.Time().String(),
		Status:        a.Status().String(),
	}
}

// AppointmentRequested is emitted when a patient books a slot.
type AppointmentRequested struct {
	sharedDomain.BaseEvent
	AppointmentDetails
}

func NewAppointmentRequested(a *Appointment) *AppointmentRequested {
	return &AppointmentRequested{
		BaseEvent:          sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyRequested),
		AppointmentDetails: detailsOf(a),
	}
}

// AppointmentApproved is raised when a doctor accepts a request.
type AppointmentApproved struct {
	sharedDomain.BaseEvent
	AppointmentDetails
}

func NewAppointmentApproved(a *Appointment) *AppointmentApproved {
	return &AppointmentApproved{
		BaseEvent:          sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyApproved),
		AppointmentDetails: detailsOf(a),
	}
}

// AppointmentDeclined is raised when a doctor turns down a request.
type AppointmentDeclined struct {
	sharedDomain.BaseEvent
	AppointmentDetails
}

func NewAppointmentDeclined(a *Appointment) *AppointmentDeclined {
	return &AppointmentDeclined{
		BaseEvent:          sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyDeclined),
		AppointmentDetails: detailsOf(a),
	}
}

// AppointmentRescheduled carries both the previous and the new slot.
type AppointmentRescheduled struct {
	sharedDomain.BaseEvent
	AppointmentDetails
	PreviousDate    string    `json:"previous_date"`
	PreviousTime    string    `json:"previous_time"`
	RescheduledFrom uuid.UUID `json:"rescheduled_from"`
}

// NewAppointmentRescheduled records the slot the appointment left.
func NewAppointmentRescheduled(a *Appointment, previousDate, previousTime string) *AppointmentRescheduled {
	e := &AppointmentRescheduled{
		BaseEvent:          sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyRescheduled),
		AppointmentDetails: detailsOf(a),
		PreviousDate:       previousDate,
		PreviousTime:       previousTime,
	}
	if from := a.RescheduledFrom(); from != nil {
		e.RescheduledFrom = *from
	}
	return e
}

// AppointmentCancelled records who cancelled.
type AppointmentCancelled struct {
	sharedDomain.BaseEvent
	AppointmentDetails
	CancelledBy string `json:"cancelled_by"`
}

func NewAppointmentCancelled(a *Appointment, by sharedDomain.Role) *AppointmentCancelled {
	return &AppointmentCancelled{
		BaseEvent:          sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyCancelled),
		AppointmentDetails: detailsOf(a),
		CancelledBy:        by.String(),
	}
}

// AppointmentCompleted is raised when a visit is closed.
type AppointmentCompleted struct {
	sharedDomain.BaseEvent
	AppointmentDetails
}

func NewAppointmentCompleted(a *Appointment) *AppointmentCompleted {
	return &AppointmentCompleted{
		BaseEvent:          sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyCompleted),
		AppointmentDetails: detailsOf(a),
	}
}

// AppointmentNoShow is raised when the patient missed the visit.
type AppointmentNoShow struct {
	sharedDomain.BaseEvent
	AppointmentDetails
}

func NewAppointmentNoShow(a *Appointment) *AppointmentNoShow {
	return &AppointmentNoShow{
		BaseEvent:          sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyNoShow),
		AppointmentDetails: detailsOf(a),
	}
}

// AppointmentReminderDue is raised by the daily sweep for tomorrow's
// appointments.
type AppointmentReminderDue struct {
	sharedDomain.BaseEvent
	AppointmentDetails
}

func NewAppointmentReminderDue(a *Appointment) *AppointmentReminderDue {
	return &AppointmentReminderDue{
		BaseEvent:          sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeyReminderDue),
		AppointmentDetails: detailsOf(a),
	}
}
