package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
)

// Block takes part of one day out of a doctor's availability regardless
// of the template. A doctor may have several blocks per day.
type Block struct {
	sharedDomain.BaseAggregateRoot
	doctorID uuid.UUID
	date     CalendarDate
	start    ClockTime
	end      ClockTime
	reason   string
}

// NewBlock validates the interval and raises BlockAdded.
func NewBlock(doctorID uuid.UUID, date CalendarDate, start, end ClockTime, reason string) (*Block, error) {
	if end <= start {
		return nil, ErrInvalidBlockRange
	}
	b := &Block{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		doctorID:          doctorID,
		date:              date,
		start:             start,
		end:               end,
		reason:            strings.TrimSpace(reason),
	}
	b.AddDomainEvent(NewBlockAdded(b))
	return b, nil
}

// RehydrateBlock restores a stored block.
func RehydrateBlock(id, doctorID uuid.UUID, date CalendarDate, start, end ClockTime, reason string, createdAt time.Time) *Block {
	return &Block{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, createdAt), 0),
		doctorID: doctorID,
		date:     date,
		start:    start,
		end:      end,
		reason:   reason,
	}
}

func (b *Block) DoctorID() uuid.UUID { return b.doctorID }
func (b *Block) Date() CalendarDate  { return b.date }
func (b *Block) Start() ClockTime    { return b.start }
func (b *Block) End() ClockTime      { return b.end }
func (b *Block) Reason() string      { return b.reason }

// Contains reports whether t falls in [start, end). A slot starting
// exactly at end is free.
func (b *Block) Contains(t ClockTime) bool {
	return t >= b.start && t < b.end
}

// OwnedBy reports whether doctorID may manage the block.
func (b *Block) OwnedBy(doctorID uuid.UUID) bool {
	return b.doctorID == doctorID
}

// Remove records the deletion; the repository performs it.
func (b *Block) Remove() {
	b.AddDomainEvent(NewBlockRemoved(b))
}
