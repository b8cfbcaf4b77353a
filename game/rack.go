package game

// ConsumeRack returns a new rack with the placements' tiles removed.
//
// Letters are removed in multiset fashion: one occurrence per distinct
// non-blank letter used, and one '?' per blank-tagged placement (a placement
// with a blank mapping always debits '?', never the mapped letter). The
// relative order of the surviving letters is preserved.
func ConsumeRack(rack []byte, placements []Placement) []byte {
	// Build the removal sequence in placement order: dedupe non-blank
	// letters, keep every '?'.
	var toRemove []byte
	seen := make(map[byte]bool)
	for _, p := range placements {
		if p.Letter == Blank {
			toRemove = append(toRemove, Blank)
			continue
		}
		if !seen[p.Letter] {
			seen[p.Letter] = true
			toRemove = append(toRemove, p.Letter)
		}
	}

	// Pick indexes to remove scanning forward from the last hit, wrapping to
	// the start when needed, so the expected survivor order holds.
	selected := make(map[int]bool, len(toRemove))
	last := -1
	n := len(rack)
	findFrom := func(start int, ch byte) int {
		for i := start; i < n; i++ {
			if !selected[i] && rack[i] == ch {
				return i
			}
		}
		return -1
	}
	for _, ch := range toRemove {
		pos := findFrom(last+1, ch)
		if pos == -1 && last >= 0 {
			for i := 0; i <= last; i++ {
				if !selected[i] && rack[i] == ch {
					pos = i
					break
				}
			}
		}
		if pos != -1 {
			selected[pos] = true
			last = pos
		}
	}

	out := make([]byte, 0, n-len(selected))
	for i, ch := range rack {
		if !selected[i] {
			out = append(out, ch)
		}
	}
	return out
}

// RackPoints sums the tile values of a rack.
func RackPoints(rack []byte) int {
	points := 0
	for _, ch := range rack {
		points += TilePoints(ch)
	}
	return points
}
