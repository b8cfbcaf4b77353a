package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"scrabble/arbiter"
	"scrabble/game"
)

// scriptedAgent replays canned outcomes, passing once the script runs out.
type scriptedAgent struct {
	name     string
	outcomes []arbiter.Outcome
}

func (a *scriptedAgent) Name() string { return a.name }

func (a *scriptedAgent) DecideMove(_ context.Context, _ *game.Game) (arbiter.Outcome, error) {
	if len(a.outcomes) == 0 {
		return arbiter.Outcome{
			Kind:     arbiter.KindPass,
			Winner:   a.name,
			Proposal: &game.MoveProposal{Pass: true},
		}, nil
	}
	out := a.outcomes[0]
	a.outcomes = a.outcomes[1:]
	return out, nil
}

func newEngineGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.NewGame(game.NewBoard(), game.NewTileBag(3), []*game.PlayerState{
		{Name: "alice", Rack: []byte("CATXYZQ")},
		{Name: "bob", Rack: []byte("AEIOUNS")},
	}, 0)
	require.NoError(t, err)
	return g
}

func TestEngineAgentCountMismatch(t *testing.T) {
	g := newEngineGame(t)
	_, err := New(g, []Agent{&scriptedAgent{name: "only-one"}})
	require.Error(t, err)
}

func TestEnginePassesEndGame(t *testing.T) {
	g := newEngineGame(t)
	eng, err := New(g, []Agent{
		&scriptedAgent{name: "alice"},
		&scriptedAgent{name: "bob"},
	})
	require.NoError(t, err)

	scores, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.True(t, g.Ended)
	require.Equal(t, game.EndAllPlayersPassedTwice, g.EndReason)
	// Both players are docked their leftover tile points.
	require.Negative(t, scores["alice"])
	require.Negative(t, scores["bob"])
}

func TestEngineAppliesPlayOutcome(t *testing.T) {
	g, err := game.NewGame(game.NewBoard(), game.NewTileBag(3), []*game.PlayerState{
		{Name: "alice", Rack: []byte("CAT")},
		{Name: "bob", Rack: []byte("AEIOUNS")},
	}, 0)
	require.NoError(t, err)
	g.Bag.Draw(100) // empty bag so the play finishes the game

	placements := []game.Placement{
		{Row: 7, Col: 6, Letter: 'C'},
		{Row: 7, Col: 7, Letter: 'A'},
		{Row: 7, Col: 8, Letter: 'T'},
	}
	alice := &scriptedAgent{name: "alice", outcomes: []arbiter.Outcome{{
		Kind:       arbiter.KindPlay,
		Winner:     "model-a",
		Proposal:   &game.MoveProposal{Placements: placements, Direction: game.Across, Word: "CAT"},
		Placements: placements,
		Score:      10,
	}}}
	eng, err := New(g, []Agent{alice, &scriptedAgent{name: "bob"}})
	require.NoError(t, err)

	scores, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, byte('C'), g.Board.Letter(7, 6))
	require.Equal(t, byte('T'), g.Board.Letter(7, 8))
	require.True(t, g.Ended)
	require.Equal(t, game.EndBagEmptyAndPlayerOut, g.EndReason)
	// 10 for CAT plus bob's 7 leftover points; bob is docked the same 7.
	require.Equal(t, 17, scores["alice"])
	require.Equal(t, -7, scores["bob"])
}

func TestEngineDegradesRejectedExchange(t *testing.T) {
	g := newEngineGame(t)
	g.Bag.Draw(94) // bag below a full rack, exchange illegal

	alice := &scriptedAgent{name: "alice", outcomes: []arbiter.Outcome{{
		Kind:     arbiter.KindExchange,
		Winner:   "synthesized",
		Proposal: &game.MoveProposal{Exchange: []byte("CATXYZQ")},
	}}}
	eng, err := New(g, []Agent{alice, &scriptedAgent{name: "bob"}})
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	require.NoError(t, err)
	require.True(t, g.Ended, "the degraded pass still counts toward ending the game")
}
