package queries

import (
	"context"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/google/uuid"
)

// AvailabilityDTO is a doctor's weekly template keyed by weekday name.
type AvailabilityDTO struct {
	DoctorID            uuid.UUID                 `json:"doctorId"`
	Days                map[string][]domain.Range `json:"days"`
	SlotDurationMinutes int                       `json:"slotDuration"`
	Configured          bool                      `json:"configured"`
}

// GetAvailabilityQuery names the doctor whose template to read.
type GetAvailabilityQuery struct {
	DoctorID uuid.UUID
}

// GetAvailabilityHandler reads a template. A doctor without one gets an
// empty week at the default duration.
type GetAvailabilityHandler struct {
	templates domain.TemplateRepository
}

// NewGetAvailabilityHandler creates a new get availability handler.
func NewGetAvailabilityHandler(templates domain.TemplateRepository) *GetAvailabilityHandler {
	return &GetAvailabilityHandler{templates: templates}
}

func (h *GetAvailabilityHandler) Handle(ctx context.Context, q GetAvailabilityQuery) (*AvailabilityDTO, error) {
	tmpl, err := h.templates.FindByDoctor(ctx, q.DoctorID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return &AvailabilityDTO{
			DoctorID:            q.DoctorID,
			Days:                map[string][]domain.Range{},
			SlotDurationMinutes: domain.DefaultSlotDurationMinutes,
		}, nil
	}
	return &AvailabilityDTO{
		DoctorID:            tmpl.DoctorID(),
		Days:                tmpl.DaysByName(),
		SlotDurationMinutes: tmpl.SlotDurationMinutes(),
		Configured:          true,
	}, nil
}
