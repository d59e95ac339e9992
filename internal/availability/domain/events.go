package domain

import (
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	TemplateAggregateType = "AvailabilityTemplate"
	BlockAggregateType    = "AvailabilityBlock"

	RoutingKeyTemplateUpdated = "availability.template_updated"
	RoutingKeyBlockAdded      = "availability.block_added"
	RoutingKeyBlockRemoved    = "availability.block_removed"
)

// TemplateUpdated is raised whenever a doctor's weekly hours change.
type TemplateUpdated struct {
	sharedDomain.BaseEvent
	DoctorID            uuid.UUID          `json:"doctor_id"`
	Days                map[string][]Range `json:"days"`
	SlotDurationMinutes int                `json:"slot_duration_minutes"`
}

func NewTemplateUpdated(t *Template) *TemplateUpdated {
	return &TemplateUpdated{
		BaseEvent:           sharedDomain.NewBaseEvent(t.ID(), TemplateAggregateType, RoutingKeyTemplateUpdated),
		DoctorID:            t.DoctorID(),
		Days:                t.DaysByName(),
		SlotDurationMinutes: t.SlotDurationMinutes(),
	}
}

// BlockAdded is raised when a doctor blocks out time.
type BlockAdded struct {
	sharedDomain.BaseEvent
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Start    string    `json:"start"`
	End      string    `json:"end"`
	Reason   string    `json:"reason,omitempty"`
}

func NewBlockAdded(b *Block) *BlockAdded {
	return &BlockAdded{
		BaseEvent: sharedDomain.NewBaseEvent(b.ID(), BlockAggregateType, RoutingKeyBlockAdded),
		DoctorID:  b.DoctorID(),
		Date:      b.Date().String(),
		Start:     b.Start().String(),
		End:       b.End().String(),
		Reason:    b.Reason(),
	}
}

// BlockRemoved is raised when a block is deleted.
type BlockRemoved struct {
	sharedDomain.BaseEvent
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
}

func NewBlockRemoved(b *Block) *BlockRemoved {
	return &BlockRemoved{
		BaseEvent: sharedDomain.NewBaseEvent(b.ID(), BlockAggregateType, RoutingKeyBlockRemoved),
		DoctorID:  b.DoctorID(),
		Date:      b.Date().String(),
	}
}
