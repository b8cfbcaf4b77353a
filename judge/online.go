package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Online queries a remote dictionary service over HTTP. The service exposes a
// single POST /judge endpoint taking {"words": [...], "language": "..."} and
// returning a Verdict document.
type Online struct {
	baseURL string
	client  *http.Client
}

// NewOnline creates a client for the given dictionary service base URL.
func NewOnline(baseURL string, timeout time.Duration) *Online {
	return &Online{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type judgeRequest struct {
	Words    []string `json:"words"`
	Language string   `json:"language"`
}

// Judge implements the Judge interface against the remote service.
func (j *Online) Judge(ctx context.Context, words []string, language string) (Verdict, error) {
	body, err := json.Marshal(judgeRequest{Words: words, Language: language})
	if err != nil {
		return Verdict{}, fmt.Errorf("encode judge request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.baseURL+"/judge", bytes.NewBuffer(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("build judge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("call judge service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("judge service returned %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return Verdict{}, fmt.Errorf("decode judge response: %w", err)
	}
	log.Debug().Int("words", len(words)).Bool("all_valid", verdict.AllValid).Msg("online judge verdict")
	return verdict, nil
}
