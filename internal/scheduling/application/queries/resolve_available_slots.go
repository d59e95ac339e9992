package queries

import (
	"context"

	"github.com/google/uuid"

	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
)

// ResolveAvailableSlotsQuery names a doctor and a YYYY-MM-DD date.
type ResolveAvailableSlotsQuery struct {
	DoctorID uuid.UUID
	Date     string
}

// AvailableSlots is what a patient may still request for one day.
type AvailableSlots struct {
	Slots           []string `json:"slots"`
	DurationMinutes int      `json:"slotDuration"`
}

// ResolveAvailableSlotsHandler expands the doctor's template for the date
// and removes booked and blocked times. Results are cached per doctor and
// date; writes invalidate them. A result read across an invalidation is
// returned but not cached.
type ResolveAvailableSlotsHandler struct {
	templates availability.TemplateRepository
	blocks    availability.BlockRepository
	ledger    domain.Ledger
	cache     availability.SlotCache
	metrics   observability.Metrics
}

// NewResolveAvailableSlotsHandler falls back to a no-op cache and metrics.
func NewResolveAvailableSlotsHandler(
	templates availability.TemplateRepository,
	blocks availability.BlockRepository,
	ledger domain.Ledger,
	cache availability.SlotCache,
	metrics observability.Metrics,
) *ResolveAvailableSlotsHandler {
	if cache == nil {
		cache = availability.NoopSlotCache{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ResolveAvailableSlotsHandler{
		templates: templates,
		blocks:    blocks,
		ledger:    ledger,
		cache:     cache,
		metrics:   metrics,
	}
}

// Handle resolves the open slots, serving from the cache when it can.
func (h *ResolveAvailableSlotsHandler) Handle(ctx context.Context, q ResolveAvailableSlotsQuery) (*AvailableSlots, error) {
	date, err := availability.ParseCalendarDate(q.Date)
	if err != nil {
		return nil, err
	}

	if cached, ok := h.cache.Get(ctx, q.DoctorID, date); ok {
		h.metrics.Counter(observability.MetricSlotCacheHits, 1)
		return &AvailableSlots{Slots: cached.Slots, DurationMinutes: cached.DurationMinutes}, nil
	}
	h.metrics.Counter(observability.MetricSlotCacheMisses, 1)
	generation := h.cache.Generation(ctx, q.DoctorID, date)

	tmpl, err := h.templates.FindByDoctor(ctx, q.DoctorID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return &AvailableSlots{Slots: []string{}, DurationMinutes: availability.DefaultSlotDurationMinutes}, nil
	}

	appts, err := h.ledger.ListActiveByDoctorDate(ctx, q.DoctorID, date)
	if err != nil {
		return nil, err
	}
	booked := make([]string, len(appts))
	for i, a := range appts {
		booked[i] = a.Time().String()
	}

	blocks, err := h.blocks.ListByDoctor(ctx, q.DoctorID, &date)
	if err != nil {
		return nil, err
	}

	result := availability.CachedSlots{
		Slots:           availability.FilterOccupied(tmpl.SlotsFor(date), booked, blocks),
		DurationMinutes: tmpl.SlotDurationMinutes(),
	}
	h.cache.Set(ctx, q.DoctorID, date, generation, result)
	return &AvailableSlots{Slots: result.Slots, DurationMinutes: result.DurationMinutes}, nil
}
