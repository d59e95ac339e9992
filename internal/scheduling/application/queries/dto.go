package queries

import (
	"time"

	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	"github.com/google/uuid"
)

// AppointmentDTO is the wire view of an appointment.
type AppointmentDTO struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patientId"`
	DoctorID        uuid.UUID  `json:"doctorId"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	Status          string     `json:"status"`
	RescheduledFrom *uuid.UUID `json:"rescheduledFrom,omitempty"`
	RemindedAt      *time.Time `json:"remindedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ToAppointmentDTO maps an appointment to its read model.
func ToAppointmentDTO(a *domain.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:              a.ID(),
		PatientID:       a.PatientID(),
		DoctorID:        a.DoctorID(),
		Date:            a.Date().String(),
		Time:            a.Time().String(),
		Status:          a.Status().String(),
		RescheduledFrom: a.RescheduledFrom(),
		RemindedAt:      a.RemindedAt(),
		CreatedAt:       a.CreatedAt(),
		UpdatedAt:       a.UpdatedAt(),
	}
}

func toAppointmentDTOs(appts []*domain.Appointment) []AppointmentDTO {
	dtos := make([]AppointmentDTO, len(appts))
	for i, a := range appts {
		dtos[i] = ToAppointmentDTO(a)
	}
	return dtos
}
