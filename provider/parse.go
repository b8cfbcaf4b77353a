package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"scrabble/game"
)

// ParseMethod identifies which parser in the fallback chain succeeded.
// Recorded for observability.
type ParseMethod string

const (
	ParseDirect        ParseMethod = "direct"
	ParseMarkdown      ParseMethod = "markdown_extraction"
	ParseInlineJSON    ParseMethod = "inline_json"
	ParseReconstructed ParseMethod = "model_reconstruction"
)

// movePayload is the tolerant wire shape for a proposed move: it accepts
// start={row,col} or top-level row/col, any direction casing, and several
// blank-encoding conventions.
type movePayload struct {
	Row        *int               `json:"row"`
	Col        *int               `json:"col"`
	Start      *game.Coord        `json:"start"`
	Direction  string             `json:"direction"`
	Placements []placementPayload `json:"placements"`
	Blanks     json.RawMessage    `json:"blanks"`
	Word       string             `json:"word"`
	Pass       bool               `json:"pass"`
	Exchange   []string           `json:"exchange"`
}

type placementPayload struct {
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
	Letter string `json:"letter"`
}

var fencePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```"),
	regexp.MustCompile("(?s)```\\s*\\n(.*?)\\n```"),
	regexp.MustCompile("(?s)```json\\s*(.*?)```"),
	regexp.MustCompile("(?s)```(.*?)```"),
}

// ParseMove parses a raw provider response through the ordered local fallback
// chain: strict parse, markdown-fenced extraction, inline-JSON scan. The
// method that succeeded is returned alongside the proposal.
func ParseMove(raw string) (*game.MoveProposal, ParseMethod, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, "", fmt.Errorf("empty response")
	}

	if mv, err := decodePayload(raw); err == nil {
		return mv, ParseDirect, nil
	}

	for _, pattern := range fencePatterns {
		m := pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if mv, err := decodePayload(strings.TrimSpace(m[1])); err == nil {
			return mv, ParseMarkdown, nil
		}
	}

	if candidate := firstBalancedObject(raw); candidate != "" {
		if mv, err := decodePayload(candidate); err == nil {
			return mv, ParseInlineJSON, nil
		}
	}

	return nil, "", fmt.Errorf("no parseable move in response")
}

// reconstructionPrompt asks a secondary model to recover a move from prose.
const reconstructionPrompt = `You are assisting a Scrabble referee system. A model responded with the following text instead of a clean JSON move description:

%s

Analyse this response and reply STRICTLY with JSON matching this schema:
{"has_move": boolean, "extracted_move": object | null, "analysis": string}
If you find a move, return it as extracted_move with placements, start coordinates, direction, blanks (if any), and word. Otherwise set has_move to false and explain why in analysis. Do not include any extra text.`

// ParseMoveWithReconstructor runs ParseMove and, if every local parser fails,
// asks the reconstructor model to extract the move as a last resort.
func ParseMoveWithReconstructor(ctx context.Context, raw string, reconstructor Provider) (*game.MoveProposal, ParseMethod, error) {
	mv, method, err := ParseMove(raw)
	if err == nil {
		return mv, method, nil
	}
	if reconstructor == nil {
		return nil, "", err
	}
	snippet := strings.TrimSpace(raw)
	if len(snippet) < 32 {
		return nil, "", fmt.Errorf("response too short for reconstruction: %w", err)
	}
	if len(snippet) > 2000 {
		snippet = snippet[:2000]
	}

	res := reconstructor.Call(ctx, Request{Prompt: fmt.Sprintf(reconstructionPrompt, snippet)})
	if res.Status != StatusOK {
		return nil, "", fmt.Errorf("reconstruction call %s: %s", res.Status, res.Err)
	}

	var wrapper struct {
		HasMove       bool            `json:"has_move"`
		ExtractedMove json.RawMessage `json:"extracted_move"`
		Analysis      string          `json:"analysis"`
	}
	body := strings.TrimSpace(res.Content)
	if inner := firstBalancedObject(body); inner != "" {
		body = inner
	}
	if err := json.Unmarshal([]byte(body), &wrapper); err != nil {
		return nil, "", fmt.Errorf("reconstruction returned non-JSON: %w", err)
	}
	if !wrapper.HasMove || len(wrapper.ExtractedMove) == 0 {
		return nil, "", fmt.Errorf("reconstruction found no move: %s", wrapper.Analysis)
	}

	moveJSON := strings.TrimSpace(string(wrapper.ExtractedMove))
	// extracted_move may itself be a JSON-encoded string.
	if strings.HasPrefix(moveJSON, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(moveJSON), &inner); err != nil {
			return nil, "", fmt.Errorf("reconstruction move string: %w", err)
		}
		moveJSON = inner
	}
	mv, err = decodePayload(moveJSON)
	if err != nil {
		return nil, "", fmt.Errorf("reconstruction move invalid: %w", err)
	}
	log.Debug().Str("analysis", wrapper.Analysis).Msg("move recovered by reconstruction")
	return mv, ParseReconstructed, nil
}

// firstBalancedObject scans for the first balanced top-level {...} block.
func firstBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func decodePayload(raw string) (*game.MoveProposal, error) {
	var payload movePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	return payload.toProposal()
}

// toProposal normalizes the tolerant payload into a canonical MoveProposal,
// enforcing the pass/placements/exchange exclusivity invariant.
func (p *movePayload) toProposal() (*game.MoveProposal, error) {
	direction, ok := game.ParseDirection(p.Direction)
	if !ok {
		return nil, fmt.Errorf("direction_invalid")
	}

	mv := &game.MoveProposal{
		Direction: direction,
		Word:      strings.ToUpper(strings.TrimSpace(p.Word)),
		Pass:      p.Pass,
	}
	for _, ex := range p.Exchange {
		ex = strings.TrimSpace(strings.ToUpper(ex))
		if len(ex) != 1 {
			return nil, fmt.Errorf("letter_len_must_be_1")
		}
		mv.Exchange = append(mv.Exchange, ex[0])
	}
	for _, pl := range p.Placements {
		if pl.Row == nil || pl.Col == nil {
			return nil, fmt.Errorf("invalid_placements_format")
		}
		letter := strings.TrimSpace(strings.ToUpper(pl.Letter))
		if len(letter) != 1 {
			return nil, fmt.Errorf("letter_len_must_be_1")
		}
		mv.Placements = append(mv.Placements, game.Placement{
			Row:    *pl.Row,
			Col:    *pl.Col,
			Letter: letter[0],
		})
	}

	// Some models answer with just word+start+direction. Expand that into
	// placements; redundant ones over matching board letters are stripped
	// during validation.
	if len(mv.Placements) == 0 && mv.Word != "" && !mv.Pass && len(mv.Exchange) == 0 {
		anchor := p.Start
		if anchor == nil && p.Row != nil && p.Col != nil {
			anchor = &game.Coord{Row: *p.Row, Col: *p.Col}
		}
		if anchor != nil {
			for i := 0; i < len(mv.Word); i++ {
				pl := game.Placement{Row: anchor.Row, Col: anchor.Col, Letter: mv.Word[i]}
				if direction == game.Across {
					pl.Col += i
				} else {
					pl.Row += i
				}
				mv.Placements = append(mv.Placements, pl)
			}
		}
	}

	if mv.Pass && len(mv.Placements) > 0 {
		return nil, fmt.Errorf("pass_move_must_not_have_placements")
	}
	if !mv.Pass && len(mv.Placements) == 0 && len(mv.Exchange) == 0 {
		return nil, fmt.Errorf("placements_required_for_play")
	}

	blanks, err := decodeBlanks(p.Blanks)
	if err != nil {
		return nil, err
	}
	mv.Blanks = blanks
	return mv, nil
}

// decodeBlanks accepts an object keyed by "row,col"/"?"/"?N" or a plain list
// ordered by blank occurrence; lists are normalized to ordinal "?N" keys.
func decodeBlanks(raw json.RawMessage) (map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err == nil {
		return asMap, nil
	}
	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		out := make(map[string]string, len(asList))
		for i, v := range asList {
			out[fmt.Sprintf("?%d", i+1)] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("invalid_blanks_format")
}
