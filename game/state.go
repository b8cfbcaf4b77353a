package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AIState is the compact board snapshot handed to model providers: 15 grid
// rows of 15 chars ('.' = empty), blank-cell coordinates, the rack as a
// literal string, scores and whose turn it is.
type AIState struct {
	Grid          []string `json:"grid"`
	Blanks        []Coord  `json:"blanks"`
	Rack          string   `json:"ai_rack"`
	OpponentScore int      `json:"opponent_score"`
	OwnScore      int      `json:"ai_score"`
	Turn          string   `json:"turn"`
}

// BuildAIState serializes the board and rack into the compact provider state.
func BuildAIState(b *Board, rack []byte, opponentScore, ownScore int, turn string) AIState {
	grid := make([]string, 0, BoardSize)
	var blanks []Coord
	for r := 0; r < BoardSize; r++ {
		var row strings.Builder
		for c := 0; c < BoardSize; c++ {
			cell := b.Cells[r][c]
			if cell.Letter != 0 {
				row.WriteByte(cell.Letter)
				if cell.IsBlank {
					blanks = append(blanks, Coord{Row: r, Col: c})
				}
			} else {
				row.WriteByte('.')
			}
		}
		grid = append(grid, row.String())
	}
	return AIState{
		Grid:          grid,
		Blanks:        blanks,
		Rack:          string(rack),
		OpponentScore: opponentScore,
		OwnScore:      ownScore,
		Turn:          turn,
	}
}

// Compact renders the state as a single JSON document for prompts.
func (s AIState) Compact() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}

// SavedPlayer is one player's persisted state.
type SavedPlayer struct {
	Name       string `json:"name"`
	Rack       string `json:"rack"`
	Score      int    `json:"score"`
	PassStreak int    `json:"pass_streak"`
}

// SaveState is the JSON-serializable snapshot of a whole game (schema v1):
// grid rows, blank coordinates, consumed-premium coordinates, racks, exact bag
// order, scores, turn, and end state.
type SaveState struct {
	SchemaVersion string        `json:"schema_version"`
	Grid          []string      `json:"grid"`
	Blanks        []Coord       `json:"blanks"`
	PremiumUsed   []Coord       `json:"premium_used"`
	Players       []SavedPlayer `json:"players"`
	Bag           string        `json:"bag"`
	Turn          int           `json:"turn"`
	GameOver      bool          `json:"game_over"`
	EndReason     string        `json:"game_end_reason,omitempty"`
	Seed          uint64        `json:"seed,omitempty"`
}

// Save captures the full game state for later Restore.
func Save(g *Game, seed uint64) SaveState {
	st := SaveState{
		SchemaVersion: "1",
		Bag:           string(g.Bag.Tiles()),
		Turn:          g.Current,
		GameOver:      g.Ended,
		Seed:          seed,
	}
	if g.Ended {
		st.EndReason = g.EndReason.String()
	}
	for r := 0; r < BoardSize; r++ {
		var row strings.Builder
		for c := 0; c < BoardSize; c++ {
			cell := g.Board.Cells[r][c]
			if cell.Letter != 0 {
				row.WriteByte(cell.Letter)
				if cell.IsBlank {
					st.Blanks = append(st.Blanks, Coord{Row: r, Col: c})
				}
			} else {
				row.WriteByte('.')
			}
			if cell.PremiumUsed {
				st.PremiumUsed = append(st.PremiumUsed, Coord{Row: r, Col: c})
			}
		}
		st.Grid = append(st.Grid, row.String())
	}
	for _, p := range g.Players {
		st.Players = append(st.Players, SavedPlayer{
			Name:       p.Name,
			Rack:       string(p.Rack),
			Score:      p.Score,
			PassStreak: p.PassStreak,
		})
	}
	return st
}

// Restore rebuilds a game from a snapshot. The bag keeps its exact saved order.
func Restore(st SaveState) (*Game, error) {
	if st.SchemaVersion != "1" {
		return nil, fmt.Errorf("unsupported save schema %q", st.SchemaVersion)
	}
	if len(st.Grid) != BoardSize {
		return nil, fmt.Errorf("saved grid has %d rows, want %d", len(st.Grid), BoardSize)
	}
	board := NewBoard()
	for r, row := range st.Grid {
		if len(row) != BoardSize {
			return nil, fmt.Errorf("saved grid row %d has %d cols, want %d", r, len(row), BoardSize)
		}
		for c := 0; c < BoardSize; c++ {
			if row[c] != '.' {
				board.Cells[r][c].Letter = row[c]
			}
		}
	}
	for _, bc := range st.Blanks {
		if !board.Inside(bc.Row, bc.Col) || board.Cells[bc.Row][bc.Col].Letter == 0 {
			return nil, fmt.Errorf("saved blank at (%d,%d) has no letter", bc.Row, bc.Col)
		}
		board.Cells[bc.Row][bc.Col].IsBlank = true
	}
	for _, pc := range st.PremiumUsed {
		if !board.Inside(pc.Row, pc.Col) {
			return nil, fmt.Errorf("saved premium_used at (%d,%d) is off the board", pc.Row, pc.Col)
		}
		board.Cells[pc.Row][pc.Col].PremiumUsed = true
	}

	players := make([]*PlayerState, 0, len(st.Players))
	for _, sp := range st.Players {
		players = append(players, &PlayerState{
			Name:       sp.Name,
			Rack:       []byte(sp.Rack),
			Score:      sp.Score,
			PassStreak: sp.PassStreak,
		})
	}
	bag := NewTileBagFromTiles([]byte(st.Bag), st.Seed)
	g, err := NewGame(board, bag, players, st.Turn)
	if err != nil {
		return nil, err
	}
	g.Ended = st.GameOver
	g.EndReason = ParseGameEndReason(st.EndReason)
	return g, nil
}
