// Package provider abstracts move-proposal model providers. All failure modes
// are encoded in the CallResult status; Call never panics and never returns a
// Go error.
package provider

import "context"

// Status of a single provider call.
type Status string

const (
	StatusOK         Status = "ok"
	StatusError      Status = "error"
	StatusTimeout    Status = "timeout"
	StatusParseError Status = "parse_error"
)

// Role of a conversation message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a provider conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the input for one provider call. When Messages is non-empty it is
// the conversation so far; Prompt is always the system instruction.
type Request struct {
	Prompt    string
	Messages  []Message
	MaxTokens int
}

// CallResult is the status-encoded outcome of one provider call attempt.
// Created per attempt and discarded after orchestration; only the winning move
// and the audit trail survive arbitration.
type CallResult struct {
	ModelID          string
	Status           Status
	Content          string
	PromptTokens     int
	CompletionTokens int
	Err              string
}

// Provider proposes moves. Implementations must encode failures in the
// returned CallResult and respect ctx cancellation and deadlines.
type Provider interface {
	ModelID() string
	Call(ctx context.Context, req Request) CallResult
}

// FallbackChain is a static mapping from a primary model id to the substitute
// provider used when the primary times out. Applied at most once per timeout
// event.
type FallbackChain map[string]Provider

// Resolve returns the substitute for the given model id, if any.
func (f FallbackChain) Resolve(modelID string) (Provider, bool) {
	sub, ok := f[modelID]
	return sub, ok
}
