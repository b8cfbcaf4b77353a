package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const defaultMaxTokens = 3600

// Gemini is a Provider backed by the Google GenAI SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider for the given model id.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider requires an API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) ModelID() string {
	return g.model
}

// Call sends the conversation to the model. Timeouts surface as
// StatusTimeout, everything else as StatusError; no error is ever returned.
func (g *Gemini) Call(ctx context.Context, req Request) CallResult {
	result := CallResult{ModelID: g.model}

	contents := buildContents(req)
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents,
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(0.2)),
			MaxOutputTokens: int32(maxTokens),
		},
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.Status = StatusTimeout
			result.Err = "deadline exceeded during generation"
			return result
		}
		log.Warn().Str("model", g.model).Err(err).Msg("gemini call failed")
		result.Status = StatusError
		result.Err = err.Error()
		return result
	}

	result.Status = StatusOK
	result.Content = resp.Text()
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	if result.Content == "" {
		result.Status = StatusError
		result.Err = "empty model response"
	}
	return result
}

// buildContents maps the conversation onto genai content turns. The system
// instruction rides as the first user turn; genai model turns use role
// "model".
func buildContents(req Request) []*genai.Content {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}
	for _, m := range req.Messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return contents
}
