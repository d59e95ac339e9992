// Package domain describes the messages sent to patients and doctors when
// an appointment changes.
package domain

import (
	"context"
	"fmt"

	scheduling "github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	"github.com/google/uuid"
)

// Notification is a rendered message for one recipient.
type Notification struct {
	Recipient uuid.UUID
	Subject   string
	Body      string
}

// Sink delivers notifications. Delivery itself lives outside this
// service.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// AppointmentChange is the decoded payload of an appointment event.
type AppointmentChange struct {
	scheduling.AppointmentDetails
	PreviousDate string `json:"previous_date,omitempty"`
	PreviousTime string `json:"previous_time,omitempty"`
	CancelledBy  string `json:"cancelled_by,omitempty"`
}

// Render builds the notifications for an event. Unknown routing keys
// yield none.
func Render(routingKey string, c AppointmentChange) []Notification {
	slot := fmt.Sprintf("%s at %s", c.Date, c.Time)

	switch routingKey {
	case scheduling.RoutingKeyRequested:
		return []Notification{
			{Recipient: c.DoctorID, Subject: "New appointment request", Body: "A patient requested " + slot + "."},
			{Recipient: c.PatientID, Subject: "Appointment requested", Body: "Your request for " + slot + " is awaiting approval."},
		}
	case scheduling.RoutingKeyApproved:
		return []Notification{
			{Recipient: c.PatientID, Subject: "Appointment confirmed", Body: "Your appointment on " + slot + " is confirmed."},
		}
	case scheduling.RoutingKeyDeclined:
		return []Notification{
			{Recipient: c.PatientID, Subject: "Appointment declined", Body: "Your request for " + slot + " was declined."},
		}
	case scheduling.RoutingKeyRescheduled:
		body := fmt.Sprintf("Moved from %s at %s to %s.", c.PreviousDate, c.PreviousTime, slot)
		return []Notification{
			{Recipient: c.PatientID, Subject: "Appointment rescheduled", Body: body},
			{Recipient: c.DoctorID, Subject: "Appointment rescheduled", Body: body},
		}
	case scheduling.RoutingKeyCancelled:
		body := fmt.Sprintf("The appointment on %s was cancelled by the %s.", slot, c.CancelledBy)
		return []Notification{
			{Recipient: c.PatientID, Subject: "Appointment cancelled", Body: body},
			{Recipient: c.DoctorID, Subject: "Appointment cancelled", Body: body},
		}
	case scheduling.RoutingKeyNoShow:
		return []Notification{
			{Recipient: c.PatientID, Subject: "Missed appointment", Body: "You were marked absent for " + slot + "."},
		}
	case scheduling.RoutingKeyReminderDue:
		return []Notification{
			{Recipient: c.PatientID, Subject: "Appointment reminder", Body: "Reminder: you have an appointment on " + slot + "."},
		}
	default:
		return nil
	}
}
