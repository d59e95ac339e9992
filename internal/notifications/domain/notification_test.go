package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scheduling "github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
)

func TestRender(t *testing.T) {
	change := AppointmentChange{
		AppointmentDetails: scheduling.AppointmentDetails{
			AppointmentID: uuid.New(),
			PatientID:     uuid.New(),
			DoctorID:      uuid.New(),
			Date:          "2026-03-02",
			Time:          "09:30",
		},
		PreviousDate: "2026-03-02",
		PreviousTime: "09:00",
		CancelledBy:  "patient",
	}

	tests := []struct {
		key        string
		recipients []uuid.UUID
		contains   string
	}{
		{scheduling.RoutingKeyRequested, []uuid.UUID{change.DoctorID, change.PatientID}, "2026-03-02 at 09:30"},
		{scheduling.RoutingKeyApproved, []uuid.UUID{change.PatientID}, "confirmed"},
		{scheduling.RoutingKeyDeclined, []uuid.UUID{change.PatientID}, "declined"},
		{scheduling.RoutingKeyRescheduled, []uuid.UUID{change.PatientID, change.DoctorID}, "from 2026-03-02 at 09:00"},
		{scheduling.RoutingKeyCancelled, []uuid.UUID{change.PatientID, change.DoctorID}, "by the patient"},
		{scheduling.RoutingKeyNoShow, []uuid.UUID{change.PatientID}, "absent"},
		{scheduling.RoutingKeyReminderDue, []uuid.UUID{change.PatientID}, "Reminder"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := Render(tt.key, change)
			require.Len(t, got, len(tt.recipients))
			for i, n := range got {
				assert.Equal(t, tt.recipients[i], n.Recipient)
				assert.NotEmpty(t, n.Subject)
			}
			assert.Contains(t, got[0].Body, tt.contains)
		})
	}

	assert.Empty(t, Render(scheduling.RoutingKeyCompleted, change))
	assert.Empty(t, Render("block.added", change))
}
