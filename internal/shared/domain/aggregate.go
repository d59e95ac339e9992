package domain

import "github.com/google/uuid"

// AggregateRoot is the consistency boundary that records domain events
// until the application layer hands them to the outbox.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
	AddDomainEvent(event DomainEvent)
	Version() int
}

// BaseAggregateRoot is embedded by aggregates to collect pending events.
type BaseAggregateRoot struct {
	BaseEntity
	pending []DomainEvent
	version int
}

// NewBaseAggregateRoot creates an aggregate root with a generated ID.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// NewBaseAggregateRootWithID creates an aggregate root with the given ID.
func NewBaseAggregateRootWithID(id uuid.UUID) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntityWithID(id)}
}

// RehydrateBaseAggregateRoot restores an aggregate root from storage.
// Rehydrated aggregates start with no pending events.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, version: version}
}

// DomainEvents returns the events raised since the last clear.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(a.pending))
	copy(out, a.pending)
	return out
}

// ClearDomainEvents drops pending events once they are persisted.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// AddDomainEvent records an event and bumps the version.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
	a.version++
}

// Version counts the state changes applied to the aggregate.
func (a *BaseAggregateRoot) Version() int {
	return a.version
}
