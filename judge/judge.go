// Package judge provides word-legality oracles (offline wordlist, online
// dictionary, model-backed) and the unified move validation pipeline.
package judge

import "context"

// WordVerdict is the judgment for a single word.
type WordVerdict struct {
	Word   string `json:"word"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Verdict aggregates per-word judgments for one candidate word set. Produced
// per candidate, never cached across unrelated candidates.
type Verdict struct {
	Results  []WordVerdict `json:"results"`
	AllValid bool          `json:"all_valid"`
}

// Judge validates candidate words against a lexicon, independent of geometric
// rule legality. Implementations must be safe for concurrent use.
type Judge interface {
	Judge(ctx context.Context, words []string, language string) (Verdict, error)
}
