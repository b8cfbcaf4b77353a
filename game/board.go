package game

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

// BoardSize is the side length of the square board.
const BoardSize = 15

// Premium is a board cell's one-time score multiplier.
type Premium int

const (
	PremiumNone Premium = iota
	PremiumDL
	PremiumTL
	PremiumDW
	PremiumTW
)

func (p Premium) String() string {
	switch p {
	case PremiumDL:
		return "DL"
	case PremiumTL:
		return "TL"
	case PremiumDW:
		return "DW"
	case PremiumTW:
		return "TW"
	default:
		return ""
	}
}

// Cell is a single board square. Letter is 0 when empty. Premium is set once at
// construction; only PremiumUsed ever changes afterwards, false to true.
type Cell struct {
	Letter      byte
	IsBlank     bool
	Premium     Premium
	PremiumUsed bool
}

//go:embed premiums.json
var premiumLayout []byte

// Board is the 15x15 grid of cells. It owns cell mutation; all rule checks are
// pure functions over it.
type Board struct {
	Cells [BoardSize][BoardSize]Cell
}

// NewBoard creates an empty board with the standard premium layout.
func NewBoard() *Board {
	b, err := newBoardFromLayout(premiumLayout)
	if err != nil {
		// Embedded layout is fixed at build time
		panic(err)
	}
	return b
}

func newBoardFromLayout(layout []byte) (*Board, error) {
	var tags [][]string
	if err := json.Unmarshal(layout, &tags); err != nil {
		return nil, fmt.Errorf("parse premium layout: %w", err)
	}
	if len(tags) != BoardSize {
		return nil, fmt.Errorf("premium layout has %d rows, want %d", len(tags), BoardSize)
	}
	b := &Board{}
	for r := 0; r < BoardSize; r++ {
		if len(tags[r]) != BoardSize {
			return nil, fmt.Errorf("premium layout row %d has %d cols, want %d", r, len(tags[r]), BoardSize)
		}
		for c := 0; c < BoardSize; c++ {
			switch tags[r][c] {
			case "DL":
				b.Cells[r][c].Premium = PremiumDL
			case "TL":
				b.Cells[r][c].Premium = PremiumTL
			case "DW":
				b.Cells[r][c].Premium = PremiumDW
			case "TW":
				b.Cells[r][c].Premium = PremiumTW
			}
		}
	}
	return b, nil
}

// Copy returns an independent deep copy of the board.
func (b *Board) Copy() *Board {
	nb := *b
	return &nb
}

// Inside reports whether (row, col) is on the board.
func (b *Board) Inside(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// Letter returns the letter at (row, col), 0 if empty.
func (b *Board) Letter(row, col int) byte {
	return b.Cells[row][col].Letter
}

// Empty reports whether the board holds no letters at all.
func (b *Board) Empty() bool {
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if b.Cells[r][c].Letter != 0 {
				return false
			}
		}
	}
	return true
}

// PlaceLetters applies placements to the board without any rule validation.
// Callers must validate first. Premium consumption happens after scoring, not
// here.
func (b *Board) PlaceLetters(placements []Placement) {
	for _, p := range placements {
		cell := &b.Cells[p.Row][p.Col]
		cell.Letter = p.PlacedLetter()
		cell.IsBlank = p.Letter == Blank
	}
}

// ClearLetters removes the given placements again (undo before commit).
// PremiumUsed flags are left untouched; they only flip on commit.
func (b *Board) ClearLetters(placements []Placement) {
	for _, p := range placements {
		cell := &b.Cells[p.Row][p.Col]
		cell.Letter = 0
		cell.IsBlank = false
	}
}

// LineDirection reports whether all placements share a single row (ACROSS) or
// a single column (DOWN). Anything else is DirectionNone and always illegal.
func LineDirection(placements []Placement) Direction {
	if len(placements) == 0 {
		return DirectionNone
	}
	sameRow, sameCol := true, true
	for _, p := range placements[1:] {
		if p.Row != placements[0].Row {
			sameRow = false
		}
		if p.Col != placements[0].Col {
			sameCol = false
		}
	}
	if sameRow {
		return Across
	}
	if sameCol {
		return Down
	}
	return DirectionNone
}

// ExtendWord walks contiguous occupied cells through (row, col) in the given
// direction and returns the full run of coordinates, leftmost/topmost first.
func (b *Board) ExtendWord(row, col int, direction Direction) []Coord {
	dr, dc := 0, 1
	if direction == Down {
		dr, dc = 1, 0
	}
	r, c := row, col
	for b.Inside(r-dr, c-dc) && b.Letter(r-dr, c-dc) != 0 {
		r -= dr
		c -= dc
	}
	var coords []Coord
	for b.Inside(r, c) && b.Letter(r, c) != 0 {
		coords = append(coords, Coord{Row: r, Col: c})
		r += dr
		c += dc
	}
	return coords
}

// BuildWordsForMove finds the main word plus every new cross-word for a set of
// placements. The placements must already be provisionally on the board.
// Duplicate words at the same anchor and direction are coalesced.
func (b *Board) BuildWordsForMove(placements []Placement) []WordFound {
	direction := LineDirection(placements)
	if direction == DirectionNone {
		return nil
	}

	type anchor struct {
		row, col  int
		direction Direction
	}
	seen := make(map[anchor]bool)
	var words []WordFound

	add := func(coords []Coord, dir Direction) {
		if len(coords) < 2 {
			return
		}
		key := anchor{coords[0].Row, coords[0].Col, dir}
		if seen[key] {
			return
		}
		seen[key] = true
		var sb strings.Builder
		for _, cc := range coords {
			sb.WriteByte(b.Letter(cc.Row, cc.Col))
		}
		words = append(words, WordFound{Word: sb.String(), Cells: coords})
	}

	// Main word through any new cell in the placement direction.
	add(b.ExtendWord(placements[0].Row, placements[0].Col, direction), direction)

	// Cross-words: perpendicular run through each newly placed cell.
	cross := Down
	if direction == Down {
		cross = Across
	}
	for _, p := range placements {
		add(b.ExtendWord(p.Row, p.Col, cross), cross)
	}

	return words
}
