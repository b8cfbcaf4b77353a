package game

import "strings"

// Direction of a word laid on the board.
type Direction int

const (
	DirectionNone Direction = iota
	Across
	Down
)

func (d Direction) String() string {
	switch d {
	case Across:
		return "ACROSS"
	case Down:
		return "DOWN"
	default:
		return "NONE"
	}
}

// ParseDirection normalizes a direction string. Empty defaults to ACROSS.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ACROSS":
		return Across, true
	case "DOWN":
		return Down, true
	default:
		return DirectionNone, false
	}
}

// Blank is the wildcard tile symbol.
const Blank = byte('?')

// Coord is a board cell position.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Placement is one newly laid tile at (Row, Col). Letter is 'A'..'Z' or '?' for
// a blank; BlankAs carries the resolved letter when Letter == '?'.
type Placement struct {
	Row     int
	Col     int
	Letter  byte
	BlankAs byte
}

// PlacedLetter is the letter the placement puts on the board.
func (p Placement) PlacedLetter() byte {
	if p.Letter == Blank && p.BlankAs != 0 {
		return p.BlankAs
	}
	return p.Letter
}

// WordFound is one word formed on the board with its cell coordinates.
// Derived from board contents, never stored.
type WordFound struct {
	Word  string
	Cells []Coord
}

// ScoreBreakdown details the score of a single word.
// Total = (BasePoints + LetterBonusPoints) * WordMultiplier.
type ScoreBreakdown struct {
	Word              string `json:"word"`
	BasePoints        int    `json:"base_points"`
	LetterBonusPoints int    `json:"letter_bonus_points"`
	WordMultiplier    int    `json:"word_multiplier"`
	Total             int    `json:"total"`
}

// MoveProposal is a parsed move candidate. Exactly one of non-empty Placements,
// Exchange, or Pass is meaningful; a pass carries zero placements (enforced at
// parse time).
type MoveProposal struct {
	Placements []Placement
	Direction  Direction
	Word       string
	Exchange   []byte
	Pass       bool
	// Blanks holds the raw blank-to-letter mapping as sent by the provider:
	// keys may be "row,col", "?", or ordinal "?1","?2",... Values are letters.
	Blanks map[string]string
}

// IsPlay reports whether the proposal places at least one tile.
func (m *MoveProposal) IsPlay() bool {
	return !m.Pass && len(m.Exchange) == 0 && len(m.Placements) > 0
}
