package queries

import (
	"context"

	"github.com/google/uuid"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
)

// ComputeQueueQuery names a doctor and a day.
type ComputeQueueQuery struct {
	DoctorID uuid.UUID
	Date     string
}

// Queue is a doctor's day in visiting order.
type Queue struct {
	DurationMinutes int                 `json:"slotDuration"`
	Count           int                 `json:"count"`
	Entries         []domain.QueueEntry `json:"queue"`
}

// ComputeQueueHandler estimates waits from the slot duration alone. A
// doctor without a template uses the default duration.
type ComputeQueueHandler struct {
	templates availability.TemplateRepository
	ledger    domain.Ledger
}

// NewComputeQueueHandler creates a new queue handler.
func NewComputeQueueHandler(templates availability.TemplateRepository, ledger domain.Ledger) *ComputeQueueHandler {
	return &ComputeQueueHandler{templates: templates, ledger: ledger}
}

// Handle orders the day's live appointments and assigns ETAs.
func (h *ComputeQueueHandler) Handle(ctx context.Context, q ComputeQueueQuery) (*Queue, error) {
	date, err := availability.ParseCalendarDate(q.Date)
	if err != nil {
		return nil, err
	}

	duration := availability.DefaultSlotDurationMinutes
	tmpl, err := h.templates.FindByDoctor(ctx, q.DoctorID)
	if err != nil {
		return nil, err
	}
	if tmpl != nil {
		duration = tmpl.SlotDurationMinutes()
	}

	appts, err := h.ledger.ListActiveByDoctorDate(ctx, q.DoctorID, date)
	if err != nil {
		return nil, err
	}

	entries := domain.ComputeQueue(appts, duration)
	return &Queue{DurationMinutes: duration, Count: len(entries), Entries: entries}, nil
}
