package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockTime is a wall-clock time of day in minutes since midnight. It
// carries no date or zone.
type ClockTime int

// ParseClockTime reads a 24-hour "HH:mm" label. Single-digit hours are
// accepted.
func ParseClockTime(s string) (ClockTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(m) != 2 || h == "" || len(h) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return ClockTime(hours*60 + minutes), nil
}

// EndOfDay is the "24:00" bound that closes a range at midnight.
const EndOfDay ClockTime = 24 * 60

// ParseEndClockTime reads the exclusive end of a range. It accepts
// everything ParseClockTime does plus "24:00".
func ParseEndClockTime(s string) (ClockTime, error) {
	if strings.TrimSpace(s) == "24:00" {
		return EndOfDay, nil
	}
	return ParseClockTime(s)
}

// MustClockTime panics on malformed input. Use for literals only.
func MustClockTime(s string) ClockTime {
	t, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Minutes returns minutes since midnight.
func (t ClockTime) Minutes() int { return int(t) }

// String formats as zero-padded HH:mm.
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}
