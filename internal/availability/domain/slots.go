package domain

// Range is one open interval of a weekday, as HH:mm labels.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// GenerateSlots lays a lattice of durationMinutes over each range in the
// order given and returns the start times as HH:mm. A slot is emitted only
// if it ends by the range end. Ranges are neither sorted nor merged, so
// overlapping ranges yield duplicate times. Ranges with a blank or
// unreadable bound contribute nothing, as does a non-positive duration.
func GenerateSlots(ranges []Range, durationMinutes int) []string {
	slots := []string{}
	if durationMinutes <= 0 {
		return slots
	}
	for _, r := range ranges {
		if r.Start == "" || r.End == "" {
			continue
		}
		start, err := ParseClockTime(r.Start)
		if err != nil {
			continue
		}
		end, err := ParseEndClockTime(r.End)
		if err != nil {
			continue
		}
		for cur := start.Minutes(); cur+durationMinutes <= end.Minutes(); cur += durationMinutes {
			slots = append(slots, ClockTime(cur).String())
		}
	}
	return slots
}
