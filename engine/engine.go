// Package engine runs a full game loop: each turn it asks the current
// player's agent for a move and applies the outcome to the game.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"scrabble/arbiter"
	"scrabble/game"
)

// MaxTurns stops runaway games where agents keep exchanging.
const MaxTurns = 200

type Engine struct {
	Game     *game.Game
	Agents   []Agent
	MaxTurns int
}

func New(g *game.Game, agents []Agent) (*Engine, error) {
	if len(agents) != len(g.Players) {
		return nil, fmt.Errorf("number of agents (%d) does not match number of players (%d)", len(agents), len(g.Players))
	}
	if len(agents) < 2 {
		return nil, fmt.Errorf("need at least two agents")
	}
	return &Engine{
		Game:     g,
		Agents:   agents,
		MaxTurns: MaxTurns,
	}, nil
}

// Run executes the game loop until the game ends or the turn cap is hit and
// returns the final scores.
func (e *Engine) Run(ctx context.Context) (map[string]int, error) {
	log.Info().Str("player", e.Game.CurrentPlayer().Name).Msg("game starting")

	turnCount := 1
	for !e.Game.Ended && turnCount <= e.MaxTurns {
		if err := ctx.Err(); err != nil {
			return e.Game.Scores(), err
		}
		agent := e.Agents[e.Game.Current]
		player := e.Game.CurrentPlayer()

		outcome, err := agent.DecideMove(ctx, e.Game)
		if err != nil {
			return e.Game.Scores(), fmt.Errorf("agent %s failed on turn %d: %w", agent.Name(), turnCount, err)
		}
		if err := e.apply(outcome); err != nil {
			return e.Game.Scores(), fmt.Errorf("apply move on turn %d: %w", turnCount, err)
		}

		log.Info().Int("turn", turnCount).Str("player", player.Name).
			Str("kind", outcome.Kind).Str("winner", outcome.Winner).
			Int("score", player.Score).Msg("turn played")
		turnCount++
	}

	if !e.Game.Ended {
		log.Warn().Int("turns", e.MaxTurns).Msg("turn cap reached, settling game")
		e.Game.DeclareNoMovesAvailable()
	}
	log.Info().Str("reason", e.Game.EndReason.String()).
		Interface("scores", e.Game.Scores()).Msg("game over")
	return e.Game.Scores(), nil
}

// apply commits an arbitration outcome to the game. A play that the game
// rejects (the session validated against a snapshot) degrades to a pass
// rather than failing the whole match; an exchange without enough bag tiles
// does the same.
func (e *Engine) apply(outcome arbiter.Outcome) error {
	switch outcome.Kind {
	case arbiter.KindPlay:
		if _, err := e.Game.PlayMove(outcome.Placements); err != nil {
			log.Warn().Err(err).Msg("validated play rejected by game, passing instead")
			return e.Game.PassTurn()
		}
		return nil
	case arbiter.KindExchange:
		if err := e.Game.ExchangeTiles(outcome.Proposal.Exchange); err != nil {
			log.Warn().Err(err).Msg("exchange rejected by game, passing instead")
			return e.Game.PassTurn()
		}
		return nil
	case arbiter.KindPass:
		return e.Game.PassTurn()
	default:
		return fmt.Errorf("unknown outcome kind %q", outcome.Kind)
	}
}
