package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type ledgerEntry struct {
	domain.BaseAggregateRoot
}

type entryRecorded struct {
	domain.BaseEvent
}

func newEntryRecorded(id uuid.UUID) entryRecorded {
	return entryRecorded{BaseEvent: domain.NewBaseEvent(id, "LedgerEntry", "ledger.entry.recorded")}
}

func TestBaseAggregateRoot_PendingEvents(t *testing.T) {
	entry := &ledgerEntry{BaseAggregateRoot: domain.NewBaseAggregateRoot()}
	assert.NotEqual(t, uuid.Nil, entry.ID())
	assert.Empty(t, entry.DomainEvents())
	assert.Equal(t, 0, entry.Version())

	entry.AddDomainEvent(newEntryRecorded(entry.ID()))
	entry.AddDomainEvent(newEntryRecorded(entry.ID()))

	events := entry.DomainEvents()
	assert.Len(t, events, 2)
	assert.Equal(t, 2, entry.Version())
	for _, e := range events {
		assert.Equal(t, entry.ID(), e.AggregateID())
	}

	entry.ClearDomainEvents()
	assert.Empty(t, entry.DomainEvents())
	assert.Equal(t, 2, entry.Version(), "clearing keeps the version")
}

func TestBaseAggregateRoot_DomainEventsIsACopy(t *testing.T) {
	entry := &ledgerEntry{BaseAggregateRoot: domain.NewBaseAggregateRoot()}
	entry.AddDomainEvent(newEntryRecorded(entry.ID()))

	events := entry.DomainEvents()
	events[0] = nil

	assert.NotNil(t, entry.DomainEvents()[0])
}

func TestRehydrateBaseAggregateRoot(t *testing.T) {
	id := uuid.New()
	base := domain.RehydrateBaseEntity(id, testTime, testTime)

	root := domain.RehydrateBaseAggregateRoot(base, 7)

	assert.Equal(t, id, root.ID())
	assert.Equal(t, 7, root.Version())
	assert.Empty(t, root.DomainEvents())
}
