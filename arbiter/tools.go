package arbiter

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"scrabble/game"
	"scrabble/judge"
	"scrabble/provider"
)

// ToolContext is the read-only world a tool invocation sees: a board snapshot,
// the proposing player's rack, and the lexicon judge. Handlers must not mutate
// the board except provisionally (place then clear).
type ToolContext struct {
	Board    *game.Board
	Rack     []byte
	Language string
	Judge    judge.Judge
}

// Handler executes one tool call. Returned values must be JSON-serializable.
type Handler func(ctx context.Context, tc *ToolContext, args map[string]any) (any, error)

// Registry maps tool names to handlers. Populated once at startup; lookups at
// call time never add entries.
type Registry map[string]Handler

// toolCall is the in-band invocation shape a model emits instead of a move.
type toolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Register adds a handler. Blank or duplicate names and nil handlers are
// configuration bugs, caught here instead of at call time.
func (r Registry) Register(name string, h Handler) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("tool name must not be blank")
	}
	if h == nil {
		return fmt.Errorf("tool %q has no handler", name)
	}
	if _, exists := r[name]; exists {
		return fmt.Errorf("tool %q registered twice", name)
	}
	r[name] = h
	return nil
}

// NewRegistry builds the builtin tool set.
func NewRegistry() Registry {
	r := Registry{}
	builtins := []struct {
		name    string
		handler Handler
	}{
		{"get_board_state", toolBoardState},
		{"get_rack_letters", toolRackLetters},
		{"get_premium_squares", toolPremiumSquares},
		{"get_tile_values", toolTileValues},
		{"rules_first_move", toolRuleFirstMove},
		{"rules_placements_in_line", toolRuleInLine},
		{"rules_no_gaps", toolRuleNoGaps},
		{"rules_connected", toolRuleConnected},
		{"extract_all_words", toolExtractWords},
		{"calculate_move_score", toolMoveScore},
		{"validate_move_legality", toolValidateMove},
		{"validate_word", toolValidateWord},
	}
	for _, b := range builtins {
		if err := r.Register(b.name, b.handler); err != nil {
			// The builtin table is fixed at build time.
			panic(err)
		}
	}
	return r
}

// Names lists the registered tools in stable order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named tool and returns its JSON-encoded result. Failures,
// including unknown tools, come back as structured JSON so the model can
// correct itself instead of derailing the session.
func (r Registry) Invoke(ctx context.Context, tc *ToolContext, call toolCall) string {
	handler, ok := r[call.Tool]
	if !ok {
		return encodeToolResult(map[string]any{
			"error":     "unknown_tool",
			"tool":      call.Tool,
			"available": r.Names(),
		})
	}
	result, err := handler(ctx, tc, call.Args)
	if err != nil {
		return encodeToolResult(map[string]any{
			"error": err.Error(),
			"tool":  call.Tool,
		})
	}
	return encodeToolResult(map[string]any{"tool": call.Tool, "result": result})
}

func encodeToolResult(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(data)
}

// parseToolCall recognizes an in-band tool invocation in model output.
func parseToolCall(content string) (toolCall, bool) {
	body := strings.TrimSpace(content)
	var call toolCall
	if err := json.Unmarshal([]byte(body), &call); err != nil || call.Tool == "" {
		return toolCall{}, false
	}
	return call, true
}

func toolBoardState(_ context.Context, tc *ToolContext, _ map[string]any) (any, error) {
	rows := make([]string, game.BoardSize)
	for r := 0; r < game.BoardSize; r++ {
		var sb strings.Builder
		for c := 0; c < game.BoardSize; c++ {
			ch := tc.Board.Letter(r, c)
			if ch == 0 {
				ch = '.'
			}
			sb.WriteByte(ch)
		}
		rows[r] = sb.String()
	}
	return map[string]any{"grid": rows}, nil
}

func toolRackLetters(_ context.Context, tc *ToolContext, _ map[string]any) (any, error) {
	return map[string]any{"rack": string(tc.Rack)}, nil
}

func toolPremiumSquares(_ context.Context, tc *ToolContext, _ map[string]any) (any, error) {
	out := map[string][][2]int{}
	for r := 0; r < game.BoardSize; r++ {
		for c := 0; c < game.BoardSize; c++ {
			cell := tc.Board.Cells[r][c]
			if cell.Premium == game.PremiumNone || cell.PremiumUsed {
				continue
			}
			key := cell.Premium.String()
			out[key] = append(out[key], [2]int{r, c})
		}
	}
	return out, nil
}

func toolTileValues(_ context.Context, _ *ToolContext, _ map[string]any) (any, error) {
	values := map[string]int{}
	for letter := byte('A'); letter <= 'Z'; letter++ {
		values[string(letter)] = game.TilePoints(letter)
	}
	values[string(game.Blank)] = 0
	return values, nil
}

func toolRuleFirstMove(_ context.Context, tc *ToolContext, args map[string]any) (any, error) {
	placements, err := placementsFromArgs(args)
	if err != nil {
		return nil, err
	}
	if !tc.Board.Empty() {
		return map[string]any{"applies": false, "ok": true}, nil
	}
	return map[string]any{"applies": true, "ok": game.FirstMoveCoversCenter(placements)}, nil
}

func toolRuleInLine(_ context.Context, _ *ToolContext, args map[string]any) (any, error) {
	placements, err := placementsFromArgs(args)
	if err != nil {
		return nil, err
	}
	dir := game.LineDirection(placements)
	return map[string]any{"in_line": dir != game.DirectionNone, "direction": dir.String()}, nil
}

func toolRuleNoGaps(_ context.Context, tc *ToolContext, args map[string]any) (any, error) {
	placements, err := placementsFromArgs(args)
	if err != nil {
		return nil, err
	}
	dir := game.LineDirection(placements)
	if dir == game.DirectionNone {
		return map[string]any{"ok": false, "reason": "not_in_one_line"}, nil
	}
	return map[string]any{"ok": game.NoGapsInLine(tc.Board, placements, dir)}, nil
}

func toolRuleConnected(_ context.Context, tc *ToolContext, args map[string]any) (any, error) {
	placements, err := placementsFromArgs(args)
	if err != nil {
		return nil, err
	}
	return map[string]any{"ok": game.ConnectedToExisting(tc.Board, placements)}, nil
}

func toolExtractWords(_ context.Context, tc *ToolContext, args map[string]any) (any, error) {
	placements, err := placementsFromArgs(args)
	if err != nil {
		return nil, err
	}
	board := tc.Board.Copy()
	board.PlaceLetters(placements)
	words := game.ExtractAllWords(board, placements)
	texts := make([]string, 0, len(words))
	for _, wf := range words {
		texts = append(texts, wf.Word)
	}
	return map[string]any{"words": texts}, nil
}

func toolMoveScore(_ context.Context, tc *ToolContext, args map[string]any) (any, error) {
	placements, err := placementsFromArgs(args)
	if err != nil {
		return nil, err
	}
	board := tc.Board.Copy()
	board.PlaceLetters(placements)
	words := game.ExtractAllWords(board, placements)
	total, breakdowns := game.ScoreWords(board, placements, words)
	if len(placements) == game.RackSize {
		total += game.BingoBonus
	}
	return map[string]any{"total": total, "breakdowns": breakdowns}, nil
}

func toolValidateMove(ctx context.Context, tc *ToolContext, args map[string]any) (any, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	mv, _, err := provider.ParseMove(string(raw))
	if err != nil {
		return map[string]any{"valid": false, "reason": err.Error()}, nil
	}
	board := tc.Board.Copy()
	res := judge.ValidateMove(ctx, board, tc.Rack, mv, tc.Judge, tc.Language)
	return map[string]any{"valid": res.Valid, "reason": res.Reason}, nil
}

func toolValidateWord(ctx context.Context, tc *ToolContext, args map[string]any) (any, error) {
	words, err := stringsFromArgs(args, "words")
	if err != nil {
		return nil, err
	}
	if tc.Judge == nil {
		return nil, fmt.Errorf("no_judge_configured")
	}
	verdict, err := tc.Judge.Judge(ctx, words, tc.Language)
	if err != nil {
		return nil, fmt.Errorf("judge_unavailable:%v", err)
	}
	return verdict, nil
}

func placementsFromArgs(args map[string]any) ([]game.Placement, error) {
	raw, ok := args["placements"]
	if !ok {
		return nil, fmt.Errorf("missing_placements")
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid_placements_format")
	}
	placements := make([]game.Placement, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid_placements_format")
		}
		row, okR := numberArg(m, "row")
		col, okC := numberArg(m, "col")
		letter, _ := m["letter"].(string)
		letter = strings.ToUpper(strings.TrimSpace(letter))
		if !okR || !okC || len(letter) != 1 {
			return nil, fmt.Errorf("invalid_placements_format")
		}
		if row < 0 || row >= game.BoardSize || col < 0 || col >= game.BoardSize {
			return nil, fmt.Errorf("out_of_bounds")
		}
		placements = append(placements, game.Placement{Row: row, Col: col, Letter: letter[0]})
	}
	if len(placements) == 0 {
		return nil, fmt.Errorf("missing_placements")
	}
	return placements, nil
}

func stringsFromArgs(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("missing_%s", key)
	}
	if single, ok := raw.(string); ok {
		return []string{single}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid_%s_format", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("invalid_%s_format", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func numberArg(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
