// Package arbiter orchestrates concurrent move proposals from multiple model
// providers, validates each against the rules and lexicon, and commits the
// highest-scoring valid move. Providers never touch the live game: each worker
// gets its own board snapshot.
package arbiter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"scrabble/game"
	"scrabble/judge"
	"scrabble/metrics"
	"scrabble/provider"
)

// Outcome kinds.
const (
	KindPlay     = "play"
	KindExchange = "exchange"
	KindPass     = "pass"
)

// Config tunes one arbitration session.
type Config struct {
	// SessionTimeout bounds the whole session including retries.
	SessionTimeout time.Duration
	Retry          RetryPolicy
	// RequirePlay re-prompts a declining model once before accepting its pass.
	RequirePlay bool
	// MaxFailureReasons caps how many rejection reasons a synthesized
	// fallback move carries.
	MaxFailureReasons int
	Language          string
	// MinExploration is the number of tool calls expected before a final
	// answer; only meaningful with a tool registry.
	MinExploration int
	MaxToolRounds  int
}

// DefaultConfig returns the tuning used by the CLI.
func DefaultConfig() Config {
	return Config{
		SessionTimeout:    90 * time.Second,
		Retry:             DefaultRetryPolicy(),
		RequirePlay:       true,
		MaxFailureReasons: 3,
		Language:          "English",
		MinExploration:    1,
		MaxToolRounds:     defaultMaxRounds,
	}
}

// ModelResult is the audited outcome of one provider's participation.
type ModelResult struct {
	ModelID     string
	Status      provider.Status
	ParseMethod provider.ParseMethod
	Proposal    *game.MoveProposal
	Placements  []game.Placement
	Valid       bool
	Reason      string
	Score       int
	Breakdowns  []game.ScoreBreakdown
	Attempts    int
	ToolCalls   int

	seq int
}

// Outcome is the decision of one arbitration session. Kind is always set;
// Placements and Score are meaningful only for KindPlay.
type Outcome struct {
	SessionID  string
	Kind       string
	Winner     string
	Proposal   *game.MoveProposal
	Placements []game.Placement
	Score      int
	Breakdowns []game.ScoreBreakdown
	Reason     string
	Results    []ModelResult
}

type Option func(*Arbiter)

// WithFallback substitutes sub for the provider with the given model id after
// a timeout. Applied at most once per session per provider.
func WithFallback(primaryModelID string, sub provider.Provider) Option {
	return func(a *Arbiter) {
		if a.fallbacks == nil {
			a.fallbacks = provider.FallbackChain{}
		}
		a.fallbacks[primaryModelID] = sub
	}
}

// WithReconstructor sets the secondary model used to recover moves from
// unparseable responses.
func WithReconstructor(p provider.Provider) Option {
	return func(a *Arbiter) { a.reconstructor = p }
}

// WithToolRegistry enables the in-band tool conversation.
func WithToolRegistry(r Registry) Option {
	return func(a *Arbiter) { a.registry = r }
}

func WithCollector(c metrics.Collector) Option {
	return func(a *Arbiter) {
		if c != nil {
			a.collector = c
		}
	}
}

func WithProgressSink(s ProgressSink) Option {
	return func(a *Arbiter) { a.sink = s }
}

// Arbiter fans a position out to all configured providers and arbitrates
// their proposals. Safe for sequential reuse across turns; not for concurrent
// ProposeMove calls sharing one collector.
type Arbiter struct {
	providers     []provider.Provider
	judge         judge.Judge
	cfg           Config
	fallbacks     provider.FallbackChain
	reconstructor provider.Provider
	registry      Registry
	collector     metrics.Collector
	sink          ProgressSink
}

func New(providers []provider.Provider, j judge.Judge, cfg Config, options ...Option) (*Arbiter, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("arbiter requires at least one provider")
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultConfig().SessionTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.MaxFailureReasons <= 0 {
		cfg.MaxFailureReasons = 3
	}
	if cfg.Language == "" {
		cfg.Language = "English"
	}
	a := &Arbiter{
		providers: providers,
		judge:     j,
		cfg:       cfg,
		collector: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(a)
	}
	return a, nil
}

// ProposeMove runs one arbitration session for the current player of g. The
// game itself is never mutated; the caller applies the outcome. A session
// where every provider fails still returns a usable pass or exchange outcome.
func (a *Arbiter) ProposeMove(ctx context.Context, g *game.Game) (Outcome, error) {
	player := g.CurrentPlayer()
	if player == nil {
		return Outcome{}, fmt.Errorf("game has no current player")
	}

	opponentScore := 0
	for i, p := range g.Players {
		if i != g.Current && p.Score > opponentScore {
			opponentScore = p.Score
		}
	}
	compact := game.BuildAIState(g.Board, player.Rack, opponentScore, player.Score, player.Name).Compact()

	s := newSession(a.sink)
	a.collector.Start(s.id)
	log.Info().Str("session", s.id).Int("providers", len(a.providers)).
		Str("player", player.Name).Msg("arbitration started")

	ctx, cancel := context.WithTimeout(ctx, a.cfg.SessionTimeout)
	defer cancel()

	var mu sync.Mutex
	results := make([]ModelResult, 0, len(a.providers))

	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range a.providers {
		p := p
		board := g.Board.Copy()
		rack := append([]byte(nil), player.Rack...)
		eg.Go(func() error {
			res := a.runProvider(ctx, s, p, board, rack, compact)
			res.seq = s.nextSeq()
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	// Barrier: every provider result is collected before arbitration.
	_ = eg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].seq < results[j].seq })
	outcome := a.arbitrate(g, results)
	outcome.SessionID = s.id
	a.collector.Complete(outcome.Winner, outcome.Kind)
	s.emit(outcome.Winner, "done", outcome.Kind)
	log.Info().Str("session", s.id).Str("kind", outcome.Kind).
		Str("winner", outcome.Winner).Int("score", outcome.Score).Msg("arbitration finished")
	return outcome, nil
}

// runProvider drives one provider through its attempt loop on a private board
// snapshot. Invalid moves and parse failures feed back into the next attempt
// as a prompt hint.
func (a *Arbiter) runProvider(ctx context.Context, s *session, p provider.Provider, board *game.Board, rack []byte, compact string) ModelResult {
	res := ModelResult{ModelID: p.ModelID(), Status: provider.StatusError, Reason: "no_attempts"}
	tc := &ToolContext{Board: board, Rack: rack, Language: a.cfg.Language, Judge: a.judge}

	hint := ""
	usedFallback := false
	softRetried := false
	for attempt := 1; a.cfg.Retry.Allows(ctx, attempt); attempt++ {
		res.Attempts = attempt
		s.emit(p.ModelID(), "attempt", fmt.Sprintf("%d", attempt))

		prompt := provider.BuildPrompt(compact, a.cfg.Language, board, hint)
		if a.registry != nil {
			prompt += toolProtocol(a.registry)
		}

		start := time.Now()
		var call provider.CallResult
		var toolCalls int
		if a.registry != nil {
			loop := &toolLoop{
				provider:       p,
				registry:       a.registry,
				tc:             tc,
				maxRounds:      a.cfg.MaxToolRounds,
				minExploration: a.cfg.MinExploration,
			}
			call, toolCalls = loop.run(ctx, prompt, nil)
		} else {
			call = p.Call(ctx, provider.Request{Prompt: prompt})
		}
		res.ToolCalls += toolCalls

		metric := metrics.CallMetric{
			ModelID:          p.ModelID(),
			Attempt:          attempt,
			Status:           string(call.Status),
			PromptTokens:     call.PromptTokens,
			CompletionTokens: call.CompletionTokens,
			Latency:          time.Since(start),
			Reason:           call.Err,
		}

		switch call.Status {
		case provider.StatusTimeout:
			a.collector.AddCall(metric)
			if sub, ok := a.fallbacks.Resolve(p.ModelID()); ok && !usedFallback {
				usedFallback = true
				log.Warn().Str("model", p.ModelID()).Str("fallback", sub.ModelID()).
					Msg("provider timed out, switching to fallback")
				s.emit(p.ModelID(), "fallback", sub.ModelID())
				p = sub
				res.ModelID = sub.ModelID()
				continue
			}
			res.Status = provider.StatusTimeout
			res.Reason = "timeout"
			return res
		case provider.StatusOK:
		default:
			a.collector.AddCall(metric)
			res.Status = call.Status
			res.Reason = call.Err
			return res
		}

		mv, method, err := provider.ParseMoveWithReconstructor(ctx, call.Content, a.reconstructor)
		if err != nil {
			metric.Status = string(provider.StatusParseError)
			metric.Reason = err.Error()
			a.collector.AddCall(metric)
			res.Status = provider.StatusParseError
			res.Reason = err.Error()
			hint = fmt.Sprintf("Your previous reply could not be parsed (%v). Reply with exactly one JSON object and nothing else.", err)
			continue
		}
		metric.ParseMethod = string(method)
		res.Status = provider.StatusOK
		res.ParseMethod = method
		res.Proposal = mv

		if !mv.IsPlay() {
			if a.cfg.RequirePlay && !softRetried {
				softRetried = true
				metric.Reason = "declined"
				a.collector.AddCall(metric)
				hint = "You declined to play. A scoring move may still exist; re-examine hooks and cross-words before passing or exchanging."
				continue
			}
			metric.Reason = "declined"
			a.collector.AddCall(metric)
			res.Valid = true
			res.Reason = "declined"
			return res
		}

		vres := judge.ValidateMove(ctx, board, rack, mv, a.judge, a.cfg.Language)
		if !vres.Valid {
			metric.Reason = vres.Reason
			a.collector.AddCall(metric)
			res.Valid = false
			res.Reason = vres.Reason
			hint = fmt.Sprintf("Your previous move was rejected: %s. Propose a different move.", vres.Reason)
			continue
		}

		board.PlaceLetters(vres.Placements)
		words := game.ExtractAllWords(board, vres.Placements)
		total, breakdowns := game.ScoreWords(board, vres.Placements, words)
		board.ClearLetters(vres.Placements)
		if len(vres.Placements) == game.RackSize {
			total += game.BingoBonus
		}

		metric.Score = total
		a.collector.AddCall(metric)
		res.Valid = true
		res.Reason = ""
		res.Placements = vres.Placements
		res.Score = total
		res.Breakdowns = breakdowns
		s.emit(p.ModelID(), "proposed", fmt.Sprintf("score=%d", total))
		return res
	}
	if res.Attempts > 0 && res.Reason == "no_attempts" {
		res.Reason = "attempts_exhausted"
	}
	return res
}

// arbitrate picks the winner: the highest-scoring valid play, ties broken by
// completion order. With no valid play it falls back to a model-proposed
// exchange or pass, and as a last resort synthesizes one.
func (a *Arbiter) arbitrate(g *game.Game, results []ModelResult) Outcome {
	outcome := Outcome{Results: results}

	var best *ModelResult
	for i := range results {
		r := &results[i]
		if !r.Valid || r.Proposal == nil || !r.Proposal.IsPlay() {
			continue
		}
		if best == nil || r.Score > best.Score {
			best = r
		}
	}
	if best != nil {
		outcome.Kind = KindPlay
		outcome.Winner = best.ModelID
		outcome.Proposal = best.Proposal
		outcome.Placements = best.Placements
		outcome.Score = best.Score
		outcome.Breakdowns = best.Breakdowns
		return outcome
	}

	// No valid play: honor a model's own decline first.
	for i := range results {
		r := &results[i]
		if !r.Valid || r.Proposal == nil {
			continue
		}
		if len(r.Proposal.Exchange) > 0 && g.Bag.Remaining() >= game.RackSize {
			outcome.Kind = KindExchange
			outcome.Winner = r.ModelID
			outcome.Proposal = r.Proposal
			outcome.Reason = "declined"
			return outcome
		}
		if r.Proposal.Pass {
			outcome.Kind = KindPass
			outcome.Winner = r.ModelID
			outcome.Proposal = r.Proposal
			outcome.Reason = "declined"
			return outcome
		}
	}

	// Last resort: synthesize, carrying the leading failure reasons.
	reasons := failureReasons(results, a.cfg.MaxFailureReasons)
	player := g.CurrentPlayer()
	if g.Bag.Remaining() >= game.RackSize && player != nil && len(player.Rack) > 0 {
		outcome.Kind = KindExchange
		outcome.Winner = "synthesized"
		outcome.Proposal = &game.MoveProposal{Exchange: append([]byte(nil), player.Rack...)}
		outcome.Reason = reasons
		return outcome
	}
	outcome.Kind = KindPass
	outcome.Winner = "synthesized"
	outcome.Proposal = &game.MoveProposal{Pass: true}
	outcome.Reason = reasons
	return outcome
}

// failureReasons joins the first distinct rejection reasons, capped at max.
func failureReasons(results []ModelResult, max int) string {
	seen := map[string]bool{}
	var out []string
	for _, r := range results {
		if r.Reason == "" || r.Reason == "declined" || seen[r.Reason] {
			continue
		}
		seen[r.Reason] = true
		out = append(out, fmt.Sprintf("%s: %s", r.ModelID, r.Reason))
		if len(out) >= max {
			break
		}
	}
	if len(out) == 0 {
		return "no_valid_move_found"
	}
	return strings.Join(out, "; ")
}
