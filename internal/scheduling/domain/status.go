package domain

import "fmt"

// Status is an appointment's lifecycle state. The string values are the
// stored and wire form.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusNoShow    Status = "NoShow"
)

// ParseStatus accepts the exact stored labels.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return st, nil
	default:
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
}

// IsActive reports whether the appointment still occupies its slot.
func (s Status) IsActive() bool { return s != StatusCancelled }

func (s Status) String() string { return string(s) }
