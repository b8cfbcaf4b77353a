package arbiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scrabble/game"
	"scrabble/judge"
	"scrabble/metrics"
	"scrabble/provider"
)

// scripted replays canned responses, one per call, repeating the last.
type scripted struct {
	id    string
	delay time.Duration

	mu        sync.Mutex
	responses []provider.CallResult
	prompts   []string
	requests  []provider.Request
}

func (s *scripted) ModelID() string { return s.id }

func (s *scripted) Call(ctx context.Context, req provider.Request) provider.CallResult {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return provider.CallResult{ModelID: s.id, Status: provider.StatusTimeout, Err: "deadline exceeded"}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, req.Prompt)
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return provider.CallResult{ModelID: s.id, Status: provider.StatusError, Err: "script exhausted"}
	}
	r := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	r.ModelID = s.id
	return r
}

func ok(content string) provider.CallResult {
	return provider.CallResult{Status: provider.StatusOK, Content: content}
}

const (
	catsMove = `{"placements":[{"row":7,"col":5,"letter":"C"},{"row":7,"col":6,"letter":"A"},{"row":7,"col":7,"letter":"T"},{"row":7,"col":8,"letter":"S"}],"direction":"ACROSS","word":"CATS"}`
	dogMove  = `{"placements":[{"row":7,"col":6,"letter":"D"},{"row":7,"col":7,"letter":"O"},{"row":7,"col":8,"letter":"G"}],"direction":"ACROSS","word":"DOG"}`
	junkMove = `{"placements":[{"row":7,"col":6,"letter":"C"},{"row":7,"col":7,"letter":"A"},{"row":7,"col":8,"letter":"T"}],"direction":"ACROSS","word":"CAT"}`
)

func testGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := game.NewGame(game.NewBoard(), game.NewTileBag(1), []*game.PlayerState{
		{Name: "alice", Rack: []byte("CATSDOG")},
		{Name: "bob", Rack: []byte("AEIOUNS")},
	}, 0)
	require.NoError(t, err)
	return g
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SessionTimeout = 5 * time.Second
	cfg.Retry = RetryPolicy{MaxAttempts: 1, MinRemaining: time.Millisecond}
	cfg.RequirePlay = false
	return cfg
}

func lexicon() judge.Judge {
	return judge.NewOffline([]string{"CATS", "DOG"})
}

func TestArbiterPicksHighestScoringPlay(t *testing.T) {
	a := &scripted{id: "model-a", responses: []provider.CallResult{ok(catsMove)}}
	b := &scripted{id: "model-b", responses: []provider.CallResult{ok(dogMove)}}

	arb, err := New([]provider.Provider{a, b}, lexicon(), testConfig())
	require.NoError(t, err)

	outcome, err := arb.ProposeMove(context.Background(), testGame(t))
	require.NoError(t, err)
	require.Equal(t, KindPlay, outcome.Kind)
	require.Equal(t, "model-a", outcome.Winner, "CATS (12) beats DOG (10)")
	require.Equal(t, 12, outcome.Score)
	require.Len(t, outcome.Placements, 4)
	require.Len(t, outcome.Results, 2)
	require.NotEmpty(t, outcome.SessionID)
}

func TestArbiterRetriesWithFeedback(t *testing.T) {
	a := &scripted{id: "model-a", responses: []provider.CallResult{
		ok(junkMove), // CAT is not in the test lexicon
		ok(dogMove),
	}}
	cfg := testConfig()
	cfg.Retry = RetryPolicy{MaxAttempts: 3, MinRemaining: time.Millisecond}

	arb, err := New([]provider.Provider{a}, lexicon(), cfg)
	require.NoError(t, err)

	outcome, err := arb.ProposeMove(context.Background(), testGame(t))
	require.NoError(t, err)
	require.Equal(t, KindPlay, outcome.Kind)
	require.Equal(t, 10, outcome.Score)
	require.Equal(t, 2, outcome.Results[0].Attempts)
	require.Len(t, a.prompts, 2)
	require.Contains(t, a.prompts[1], "word_not_in_dict:CAT", "rejection fed back as a hint")
}

func TestArbiterFallbackAfterTimeout(t *testing.T) {
	t.Run("fallback provider takes over", func(t *testing.T) {
		slow := &scripted{id: "slow", responses: []provider.CallResult{
			{Status: provider.StatusTimeout, Err: "deadline exceeded"},
		}}
		fast := &scripted{id: "fast", responses: []provider.CallResult{ok(dogMove)}}
		cfg := testConfig()
		cfg.Retry = RetryPolicy{MaxAttempts: 3, MinRemaining: time.Millisecond}

		arb, err := New([]provider.Provider{slow}, lexicon(), cfg, WithFallback("slow", fast))
		require.NoError(t, err)

		outcome, err := arb.ProposeMove(context.Background(), testGame(t))
		require.NoError(t, err)
		require.Equal(t, KindPlay, outcome.Kind)
		require.Equal(t, "fast", outcome.Winner)
	})

	t.Run("at most one substitution", func(t *testing.T) {
		slow := &scripted{id: "slow", responses: []provider.CallResult{
			{Status: provider.StatusTimeout, Err: "deadline exceeded"},
		}}
		alsoSlow := &scripted{id: "also-slow", responses: []provider.CallResult{
			{Status: provider.StatusTimeout, Err: "deadline exceeded"},
		}}
		cfg := testConfig()
		cfg.Retry = RetryPolicy{MaxAttempts: 5, MinRemaining: time.Millisecond}

		arb, err := New([]provider.Provider{slow}, lexicon(), cfg, WithFallback("slow", alsoSlow))
		require.NoError(t, err)

		outcome, err := arb.ProposeMove(context.Background(), testGame(t))
		require.NoError(t, err)
		require.NotEqual(t, KindPlay, outcome.Kind)
		require.Equal(t, "synthesized", outcome.Winner)
		require.Len(t, alsoSlow.prompts, 1, "substitute tried once, not re-substituted")
	})
}

func TestArbiterRequirePlay(t *testing.T) {
	t.Run("soft decline is re-prompted once", func(t *testing.T) {
		a := &scripted{id: "model-a", responses: []provider.CallResult{
			ok(`{"pass":true}`),
			ok(dogMove),
		}}
		cfg := testConfig()
		cfg.RequirePlay = true
		cfg.Retry = RetryPolicy{MaxAttempts: 3, MinRemaining: time.Millisecond}

		arb, err := New([]provider.Provider{a}, lexicon(), cfg)
		require.NoError(t, err)

		outcome, err := arb.ProposeMove(context.Background(), testGame(t))
		require.NoError(t, err)
		require.Equal(t, KindPlay, outcome.Kind)
		require.Len(t, a.prompts, 2)
	})

	t.Run("second decline stands", func(t *testing.T) {
		a := &scripted{id: "model-a", responses: []provider.CallResult{
			ok(`{"pass":true}`),
			ok(`{"pass":true}`),
		}}
		cfg := testConfig()
		cfg.RequirePlay = true
		cfg.Retry = RetryPolicy{MaxAttempts: 3, MinRemaining: time.Millisecond}

		arb, err := New([]provider.Provider{a}, lexicon(), cfg)
		require.NoError(t, err)

		outcome, err := arb.ProposeMove(context.Background(), testGame(t))
		require.NoError(t, err)
		require.Equal(t, KindPass, outcome.Kind)
		require.Equal(t, "model-a", outcome.Winner)
	})
}

func TestArbiterTieBreakByCompletionOrder(t *testing.T) {
	fast := &scripted{id: "fast", responses: []provider.CallResult{ok(dogMove)}}
	slow := &scripted{id: "slow", delay: 150 * time.Millisecond, responses: []provider.CallResult{ok(dogMove)}}

	arb, err := New([]provider.Provider{slow, fast}, lexicon(), testConfig())
	require.NoError(t, err)

	outcome, err := arb.ProposeMove(context.Background(), testGame(t))
	require.NoError(t, err)
	require.Equal(t, "fast", outcome.Winner, "equal scores, earlier completion wins")
}

func TestArbiterSynthesizesFallbackMove(t *testing.T) {
	t.Run("exchange while the bag is full", func(t *testing.T) {
		a := &scripted{id: "model-a", responses: []provider.CallResult{ok(junkMove)}}

		arb, err := New([]provider.Provider{a}, lexicon(), testConfig())
		require.NoError(t, err)

		g := testGame(t)
		outcome, err := arb.ProposeMove(context.Background(), g)
		require.NoError(t, err)
		require.Equal(t, KindExchange, outcome.Kind)
		require.Equal(t, "synthesized", outcome.Winner)
		require.Equal(t, []byte("CATSDOG"), outcome.Proposal.Exchange)
		require.Contains(t, outcome.Reason, "word_not_in_dict:CAT")
	})

	t.Run("pass when the bag is low", func(t *testing.T) {
		a := &scripted{id: "model-a", responses: []provider.CallResult{ok(junkMove)}}

		arb, err := New([]provider.Provider{a}, lexicon(), testConfig())
		require.NoError(t, err)

		g := testGame(t)
		g.Bag.Draw(94)
		outcome, err := arb.ProposeMove(context.Background(), g)
		require.NoError(t, err)
		require.Equal(t, KindPass, outcome.Kind)
		require.True(t, outcome.Proposal.Pass)
	})
}

func TestArbiterRecordsCallMetrics(t *testing.T) {
	a := &scripted{id: "model-a", responses: []provider.CallResult{ok(dogMove)}}
	collector := metrics.NewCollector()

	arb, err := New([]provider.Provider{a}, lexicon(), testConfig(), WithCollector(collector))
	require.NoError(t, err)

	outcome, err := arb.ProposeMove(context.Background(), testGame(t))
	require.NoError(t, err)

	calls := collector.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "model-a", calls[0].ModelID)
	require.Equal(t, string(provider.StatusOK), calls[0].Status)
	require.Equal(t, string(provider.ParseDirect), calls[0].ParseMethod)
	require.Equal(t, 10, calls[0].Score)
	require.Equal(t, outcome.SessionID, calls[0].SessionID)

	sessions := collector.Sessions()
	require.Len(t, sessions, 1)
	require.Equal(t, outcome.SessionID, sessions[0].SessionID)
	require.Equal(t, KindPlay, sessions[0].WinnerKind)
	require.Equal(t, 1, sessions[0].Calls)
}

func TestArbiterRequiresProviders(t *testing.T) {
	_, err := New(nil, lexicon(), testConfig())
	require.Error(t, err)
}
