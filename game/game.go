package game

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// GameEndReason records why a game ended. Exactly one is set per game.
type GameEndReason int

const (
	EndReasonNone GameEndReason = iota
	EndBagEmptyAndPlayerOut
	EndNoMovesAvailable
	EndAllPlayersPassedTwice
)

func (r GameEndReason) String() string {
	switch r {
	case EndBagEmptyAndPlayerOut:
		return "BAG_EMPTY_AND_PLAYER_OUT"
	case EndNoMovesAvailable:
		return "NO_MOVES_AVAILABLE"
	case EndAllPlayersPassedTwice:
		return "ALL_PLAYERS_PASSED_TWICE"
	default:
		return "NONE"
	}
}

// ParseGameEndReason is the inverse of GameEndReason.String.
func ParseGameEndReason(s string) GameEndReason {
	switch s {
	case "BAG_EMPTY_AND_PLAYER_OUT":
		return EndBagEmptyAndPlayerOut
	case "NO_MOVES_AVAILABLE":
		return EndNoMovesAvailable
	case "ALL_PLAYERS_PASSED_TWICE":
		return EndAllPlayersPassedTwice
	default:
		return EndReasonNone
	}
}

// PlayerState is one player's rack, score and pass streak.
type PlayerState struct {
	Name       string
	Rack       []byte
	Score      int
	PassStreak int
}

// RackPoints is the value of the player's unused tiles.
func (p *PlayerState) RackPoints() int {
	return RackPoints(p.Rack)
}

// Game is the turn-order state machine: InProgress until an end condition
// holds, then Ended with exactly one GameEndReason and a one-time settlement.
type Game struct {
	Board     *Board
	Bag       *TileBag
	Players   []*PlayerState
	Current   int
	Ended     bool
	EndReason GameEndReason
	// Leftover holds each player's leftover tile value at settlement time.
	Leftover map[string]int

	noMovesAvailable bool
}

// NewGame builds a game over the given board and bag.
func NewGame(board *Board, bag *TileBag, players []*PlayerState, startingIndex int) (*Game, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("game requires at least one player")
	}
	return &Game{
		Board:    board,
		Bag:      bag,
		Players:  players,
		Current:  startingIndex % len(players),
		Leftover: map[string]int{},
	}, nil
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *PlayerState {
	return g.Players[g.Current]
}

func (g *Game) advanceTurn() {
	g.Current = (g.Current + 1) % len(g.Players)
}

// PlayMove applies the current player's placements: validates the rule chain,
// commits, scores (with bingo bonus), consumes premiums and rack, refills from
// the bag, resets the pass streak, and advances the turn. Returns the points
// scored. The board is untouched when an error is returned.
func (g *Game) PlayMove(placements []Placement) (int, error) {
	if g.Ended {
		return 0, fmt.Errorf("game already ended")
	}
	if len(placements) == 0 {
		return 0, fmt.Errorf("move must place at least one tile")
	}
	player := g.CurrentPlayer()

	// Bounds and occupancy first; every later check indexes the board.
	for _, p := range placements {
		if !g.Board.Inside(p.Row, p.Col) {
			return 0, fmt.Errorf("out_of_bounds")
		}
		if g.Board.Letter(p.Row, p.Col) != 0 {
			return 0, fmt.Errorf("cell_occupied")
		}
	}
	direction := LineDirection(placements)
	if direction == DirectionNone {
		return 0, fmt.Errorf("not_in_one_line")
	}
	if !NoGapsInLine(g.Board, placements, direction) {
		return 0, fmt.Errorf("gaps_in_line")
	}
	if g.Board.Empty() {
		if !FirstMoveCoversCenter(placements) {
			return 0, fmt.Errorf("first_move_must_cover_center")
		}
	} else if !ConnectedToExisting(g.Board, placements) {
		return 0, fmt.Errorf("not_connected")
	}

	g.Board.PlaceLetters(placements)
	words := g.Board.BuildWordsForMove(placements)
	if len(words) == 0 {
		g.Board.ClearLetters(placements)
		return 0, fmt.Errorf("move formed no word")
	}

	total, _ := ScoreWords(g.Board, placements, words)
	if len(placements) == RackSize {
		total += BingoBonus
	}
	ApplyPremiumConsumption(g.Board, placements)

	player.Score += total
	player.Rack = ConsumeRack(player.Rack, placements)
	if draw := RackSize - len(player.Rack); draw > 0 && g.Bag.Remaining() > 0 {
		player.Rack = append(player.Rack, g.Bag.Draw(draw)...)
	}
	player.PassStreak = 0
	g.noMovesAvailable = false

	log.Debug().Str("player", player.Name).Int("points", total).Int("placed", len(placements)).Msg("move committed")

	g.evaluateEndgame()
	if !g.Ended {
		g.advanceTurn()
	}
	return total, nil
}

// PassTurn records a pass for the current player and advances the turn.
func (g *Game) PassTurn() error {
	if g.Ended {
		return fmt.Errorf("game already ended")
	}
	g.CurrentPlayer().PassStreak++
	g.advanceTurn()
	g.evaluateEndgame()
	return nil
}

// ExchangeTiles swaps the given rack letters for fresh ones. Official rule:
// only allowed while the bag holds at least a full rack.
func (g *Game) ExchangeTiles(letters []byte) error {
	if g.Ended {
		return fmt.Errorf("game already ended")
	}
	if len(letters) == 0 {
		return fmt.Errorf("exchange requires at least one tile")
	}
	if g.Bag.Remaining() < RackSize {
		return fmt.Errorf("exchange requires at least %d tiles in the bag", RackSize)
	}
	player := g.CurrentPlayer()

	remaining := append([]byte(nil), player.Rack...)
	for _, ch := range letters {
		idx := -1
		for i, have := range remaining {
			if have == ch {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("rack_missing_tile:%c", ch)
		}
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	drawn := g.Bag.Exchange(letters)
	player.Rack = append(remaining, drawn...)
	player.PassStreak = 0
	g.advanceTurn()
	return nil
}

// DeclareNoMovesAvailable ends the game immediately with no bonus when the
// caller determines no legal move exists.
func (g *Game) DeclareNoMovesAvailable() {
	if g.Ended {
		return
	}
	g.noMovesAvailable = true
	g.evaluateEndgame()
}

// evaluateEndgame checks the end conditions after every turn and settles once.
func (g *Game) evaluateEndgame() {
	if g.Ended {
		return
	}
	reason := g.endReason()
	if reason == EndReasonNone {
		return
	}
	g.EndReason = reason
	// Everyone is docked their leftover tiles; the finisher bonus only exists
	// when someone actually emptied their rack.
	g.Leftover = g.applyFinalScoring()
	g.Ended = true
	log.Info().Str("reason", reason.String()).Msg("game ended")
}

func (g *Game) endReason() GameEndReason {
	if g.Bag.Remaining() == 0 {
		for _, p := range g.Players {
			if len(p.Rack) == 0 {
				return EndBagEmptyAndPlayerOut
			}
		}
	}
	if g.noMovesAvailable {
		return EndNoMovesAvailable
	}
	allPassed := true
	for _, p := range g.Players {
		if p.PassStreak < 2 {
			allPassed = false
			break
		}
	}
	if allPassed {
		return EndAllPlayersPassedTwice
	}
	return EndReasonNone
}

// applyFinalScoring docks every player their leftover tile value; the finisher
// additionally gains the sum of all opponents' leftovers.
func (g *Game) applyFinalScoring() map[string]int {
	leftover := make(map[string]int, len(g.Players))
	totalLeftover := 0
	var finisher *PlayerState
	for _, p := range g.Players {
		leftover[p.Name] = p.RackPoints()
		totalLeftover += leftover[p.Name]
		if len(p.Rack) == 0 && finisher == nil {
			finisher = p
		}
	}
	for _, p := range g.Players {
		p.Score -= leftover[p.Name]
	}
	if finisher != nil {
		finisher.Score += totalLeftover - leftover[finisher.Name]
	}
	return leftover
}

// Scores returns the current score per player name.
func (g *Game) Scores() map[string]int {
	out := make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		out[p.Name] = p.Score
	}
	return out
}
