package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything in the domain with a stable identity.
type Entity interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Equals(other Entity) bool
}

// BaseEntity carries identity and audit timestamps for embedding types.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

// NewBaseEntity allocates a fresh identity stamped with the current time.
func NewBaseEntity() BaseEntity {
	return NewBaseEntityWithID(uuid.New())
}

// NewBaseEntityWithID stamps a caller-chosen identity with the current time.
func NewBaseEntityWithID(id uuid.UUID) BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{id: id, createdAt: now, updatedAt: now}
}

// RehydrateBaseEntity restores identity and timestamps loaded from storage.
func RehydrateBaseEntity(id uuid.UUID, createdAt, updatedAt time.Time) BaseEntity {
	return BaseEntity{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
func (e BaseEntity) UpdatedAt() time.Time { return e.updatedAt }

// Touch marks the entity as modified now.
func (e *BaseEntity) Touch() {
	e.updatedAt = time.Now().UTC()
}

// Equals compares identities only.
func (e BaseEntity) Equals(other Entity) bool {
	if other == nil {
		return false
	}
	return e.id == other.ID()
}
