package engine

import (
	"context"

	"scrabble/arbiter"
	"scrabble/game"
)

// Agent decides one move for the current player of a game.
type Agent interface {
	Name() string
	DecideMove(ctx context.Context, g *game.Game) (arbiter.Outcome, error)
}

// ArbiterAgent plays through a multi-provider arbitration session.
type ArbiterAgent struct {
	name string
	arb  *arbiter.Arbiter
}

func NewArbiterAgent(name string, arb *arbiter.Arbiter) *ArbiterAgent {
	return &ArbiterAgent{name: name, arb: arb}
}

func (a *ArbiterAgent) Name() string {
	return a.name
}

func (a *ArbiterAgent) DecideMove(ctx context.Context, g *game.Game) (arbiter.Outcome, error) {
	return a.arb.ProposeMove(ctx, g)
}
