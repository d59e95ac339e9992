package domain

import (
	"errors"

	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
)

var (
	// ErrSlotConflict means another live appointment holds the doctor's
	// date and time.
	ErrSlotConflict = errors.New("slot already booked")
	// ErrOutsideAvailability means the time is not one of the doctor's
	// generated slots for the date.
	ErrOutsideAvailability = errors.New("time is outside the doctor's availability")
	// ErrInvalidState means the transition is not allowed from the current status.
	ErrInvalidState        = errors.New("invalid appointment state")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrForbidden           = sharedDomain.ErrForbidden
)
