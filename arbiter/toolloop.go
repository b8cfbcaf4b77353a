package arbiter

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"scrabble/provider"
)

// defaultMaxRounds caps the tool conversation: each round is one provider call,
// so runaway models cannot eat the whole session budget.
const defaultMaxRounds = 8

// toolLoop drives an in-band tool conversation with one provider. The model
// answers either with a tool call or with its final move JSON; tool results are
// fed back as user turns.
type toolLoop struct {
	provider       provider.Provider
	registry       Registry
	tc             *ToolContext
	maxRounds      int
	minExploration int
}

// toolProtocol is appended to the base prompt when a registry is configured.
func toolProtocol(r Registry) string {
	return fmt.Sprintf("\nTools are available. To call one, reply with ONLY "+
		`{"tool":"<name>","args":{...}} and wait for the result. Available tools: %s. `+
		"When you are confident, reply with the final move JSON instead of a tool call.",
		strings.Join(r.Names(), ", "))
}

// run executes the conversation until the model produces a non-tool answer,
// the round cap is hit, or ctx expires. It returns the last provider result
// (carrying the final content on success) and the number of tool calls made.
func (l *toolLoop) run(ctx context.Context, prompt string, history []provider.Message) (provider.CallResult, int) {
	maxRounds := l.maxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}
	messages := append([]provider.Message(nil), history...)

	toolCalls := 0
	nudged := false
	var last provider.CallResult
	for round := 0; round < maxRounds; round++ {
		if ctx.Err() != nil {
			last.ModelID = l.provider.ModelID()
			last.Status = provider.StatusTimeout
			last.Err = ctx.Err().Error()
			return last, toolCalls
		}

		last = l.provider.Call(ctx, provider.Request{Prompt: prompt, Messages: messages})
		if last.Status != provider.StatusOK {
			return last, toolCalls
		}

		call, isTool := parseToolCall(last.Content)
		if isTool {
			toolCalls++
			result := l.registry.Invoke(ctx, l.tc, call)
			log.Debug().Str("model", l.provider.ModelID()).Str("tool", call.Tool).Msg("tool call")
			messages = append(messages,
				provider.Message{Role: provider.RoleAssistant, Content: last.Content},
				provider.Message{Role: provider.RoleUser, Content: result},
			)
			continue
		}

		if toolCalls < l.minExploration && !nudged {
			nudged = true
			messages = append(messages,
				provider.Message{Role: provider.RoleAssistant, Content: last.Content},
				provider.Message{Role: provider.RoleUser, Content: "Before committing, verify your move with the tools (at minimum validate_move_legality and calculate_move_score). Then send the final move JSON."},
			)
			continue
		}
		return last, toolCalls
	}

	// Round cap hit mid-exploration; the last content is the best we have.
	return last, toolCalls
}
