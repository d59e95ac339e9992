package domain

import (
	"sort"

	"github.com/google/uuid"
)

// QueueEntry is one appointment's place in a doctor's day.
type QueueEntry struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
	PatientID     uuid.UUID `json:"patientId"`
	Time          string    `json:"time"`
	Status        Status    `json:"status"`
	Position      int       `json:"position"`
	ETAMinutes    int       `json:"etaMinutes"`
}

// ComputeQueue orders the day's live appointments by time and assumes
// each one before consumes exactly one slot. Ties keep input order.
func ComputeQueue(appts []*Appointment, durationMinutes int) []QueueEntry {
	live := make([]*Appointment, 0, len(appts))
	for _, a := range appts {
		if a.IsActive() {
			live = append(live, a)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].Time().String() < live[j].Time().String()
	})

	entries := make([]QueueEntry, len(live))
	for i, a := range live {
		entries[i] = QueueEntry{
			AppointmentID: a.ID(),
			PatientID:     a.PatientID(),
			Time:          a.Time().String(),
			Status:        a.Status(),
			Position:      i + 1,
			ETAMinutes:    i * durationMinutes,
		}
	}
	return entries
}
