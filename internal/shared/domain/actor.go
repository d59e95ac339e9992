package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnknownRole is returned when a role label is not recognised.
	ErrUnknownRole = errors.New("unknown role")
	// ErrForbidden is returned when the actor may not perform an operation.
	ErrForbidden = errors.New("forbidden")
)

// Role is the closed set of parties that act on appointments.
type Role int

const (
	RolePatient Role = iota + 1
	RoleDoctor
	RoleAdmin
)

// ParseRole maps a wire label ("patient", "doctor", "admin") to a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patient":
		return RolePatient, nil
	case "doctor":
		return RoleDoctor, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) String() string {
	switch r {
	case RolePatient:
		return "patient"
	case RoleDoctor:
		return "doctor"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}

// Actor is the authenticated party performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// NewActor builds an actor, rejecting undeclared roles.
func NewActor(id uuid.UUID, role Role) (Actor, error) {
	if !role.Valid() {
		return Actor{}, ErrUnknownRole
	}
	return Actor{ID: id, Role: role}, nil
}

// Is reports whether the actor is the given user.
func (a Actor) Is(id uuid.UUID) bool {
	return a.ID == id
}
