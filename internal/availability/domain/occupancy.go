package domain

// FilterOccupied drops slots that are already booked and slots starting
// inside any block's [start, end). Order is preserved.
func FilterOccupied(slots []string, booked []string, blocks []*Block) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := taken[s]; ok {
			continue
		}
		if blocked(s, blocks) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func blocked(slot string, blocks []*Block) bool {
	if len(blocks) == 0 {
		return false
	}
	t, err := ParseClockTime(slot)
	if err != nil {
		return false
	}
	for _, b := range blocks {
		if b.Contains(t) {
			return true
		}
	}
	return false
}
