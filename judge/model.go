package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const modelJudgePrompt = `You are a strict %s Scrabble dictionary referee.
For each word below, decide whether it is a valid %s Scrabble word.
Words: %s
Reply STRICTLY with JSON matching this schema, no markdown, no commentary:
{"results": [{"word": "...", "valid": true|false, "reason": "..."}], "all_valid": true|false}
The reason for an invalid word must be "word_not_in_dict:<WORD>".`

// Model judges words by asking a Gemini model. Used when no wordlist for the
// requested language is available locally.
type Model struct {
	client *genai.Client
	model  string
}

// NewModel creates a model-backed judge.
func NewModel(ctx context.Context, apiKey, model string) (*Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("model judge requires an API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Model{client: client, model: model}, nil
}

// Judge implements the Judge interface via a single model call.
func (j *Model) Judge(ctx context.Context, words []string, language string) (Verdict, error) {
	prompt := fmt.Sprintf(modelJudgePrompt, language, language, strings.Join(words, ", "))
	resp, err := j.client.Models.GenerateContent(ctx, j.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return Verdict{}, fmt.Errorf("model judge call: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return Verdict{}, fmt.Errorf("model judge returned empty response")
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return Verdict{}, fmt.Errorf("parse model judge response: %w", err)
	}
	if len(verdict.Results) != len(words) {
		log.Warn().Int("asked", len(words)).Int("answered", len(verdict.Results)).Msg("model judge word count mismatch")
	}
	return verdict, nil
}
