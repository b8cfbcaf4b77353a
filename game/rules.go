package game

// Center is the star square every first move must cover.
var Center = Coord{Row: 7, Col: 7}

// FirstMoveCoversCenter reports whether any placement lands on the center
// star. Only required while the board is empty.
func FirstMoveCoversCenter(placements []Placement) bool {
	for _, p := range placements {
		if p.Row == Center.Row && p.Col == Center.Col {
			return true
		}
	}
	return false
}

// ConnectedToExisting reports whether at least one placement is orthogonally
// adjacent to a letter already on the board. Vacuously true on an empty board;
// the center check governs there instead.
func ConnectedToExisting(b *Board, placements []Placement) bool {
	if b.Empty() {
		return true
	}
	for _, p := range placements {
		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			rr, cc := p.Row+d[0], p.Col+d[1]
			if b.Inside(rr, cc) && b.Letter(rr, cc) != 0 {
				return true
			}
		}
	}
	return false
}

// NoGapsInLine checks the contiguous span [min,max] of the placement line:
// every cell must be a new placement or already occupied. A span reaching
// outside the board can never be gap-free.
func NoGapsInLine(b *Board, placements []Placement, direction Direction) bool {
	placed := make(map[Coord]bool, len(placements))
	for _, p := range placements {
		placed[Coord{p.Row, p.Col}] = true
	}
	if direction == Across {
		r := placements[0].Row
		cmin, cmax := placements[0].Col, placements[0].Col
		for _, p := range placements[1:] {
			if p.Col < cmin {
				cmin = p.Col
			}
			if p.Col > cmax {
				cmax = p.Col
			}
		}
		for c := cmin; c <= cmax; c++ {
			if !b.Inside(r, c) {
				return false
			}
			if b.Letter(r, c) == 0 && !placed[Coord{r, c}] {
				return false
			}
		}
		return true
	}
	c := placements[0].Col
	rmin, rmax := placements[0].Row, placements[0].Row
	for _, p := range placements[1:] {
		if p.Row < rmin {
			rmin = p.Row
		}
		if p.Row > rmax {
			rmax = p.Row
		}
	}
	for r := rmin; r <= rmax; r++ {
		if !b.Inside(r, c) {
			return false
		}
		if b.Letter(r, c) == 0 && !placed[Coord{r, c}] {
			return false
		}
	}
	return true
}

// ExtractAllWords returns the main word plus all new cross-words for a move.
// The placements must already be provisionally on the board.
func ExtractAllWords(b *Board, placements []Placement) []WordFound {
	return b.BuildWordsForMove(placements)
}
