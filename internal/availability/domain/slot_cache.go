package domain

import (
	"context"

	"github.com/google/uuid"
)

// CachedSlots is a resolved slot list for one doctor and date.
type CachedSlots struct {
	Slots           []string `json:"slots"`
	DurationMinutes int      `json:"duration_minutes"`
}

// SlotCache holds resolved slot lists between writes. Implementations
// must treat every error as a miss; the ledger stays authoritative.
//
// Every invalidation advances the generation of the dates it covers.
// Readers take Generation before reading the ledger and hand it to Set,
// which drops the write if the generation has moved since.
type SlotCache interface {
	Get(ctx context.Context, doctorID uuid.UUID, date CalendarDate) (*CachedSlots, bool)
	Generation(ctx context.Context, doctorID uuid.UUID, date CalendarDate) int64
	Set(ctx context.Context, doctorID uuid.UUID, date CalendarDate, generation int64, slots CachedSlots)
	InvalidateDate(ctx context.Context, doctorID uuid.UUID, date CalendarDate)
	InvalidateDoctor(ctx context.Context, doctorID uuid.UUID)
}

// NoopSlotCache never hits.
type NoopSlotCache struct{}

func (NoopSlotCache) Get(context.Context, uuid.UUID, CalendarDate) (*CachedSlots, bool) {
	return nil, false
}
func (NoopSlotCache) Generation(context.Context, uuid.UUID, CalendarDate) int64 { return 0 }
func (NoopSlotCache) Set(context.Context, uuid.UUID, CalendarDate, int64, CachedSlots) {}
func (NoopSlotCache) InvalidateDate(context.Context, uuid.UUID, CalendarDate)          {}
func (NoopSlotCache) InvalidateDoctor(context.Context, uuid.UUID)                      {}
