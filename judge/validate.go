package judge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"scrabble/game"
)

// ValidateResult is the outcome of validating one move proposal. Callers
// branch on Valid/Reason; no errors are thrown for rule violations.
//
// On success Placements holds the rack-resolved placements (blanks carry
// their resolved letter) ready for Board.PlaceLetters.
type ValidateResult struct {
	Valid      bool
	Reason     string
	Placements []game.Placement
}

func invalid(reason string) ValidateResult {
	return ValidateResult{Valid: false, Reason: reason}
}

// ValidateMove runs the full validation pipeline over a proposal:
// bounds/occupancy, line, gaps, center/connectivity, rack feasibility with
// blank resolution, word extraction, and (when j is non-nil) per-word lexicon
// lookup. The checks short-circuit on the first failure in that order, so
// failure reasons are deterministic. The board is left untouched on rejection.
//
// A placement that matches the letter already on its cell is stripped as
// redundant; overwriting a different letter is cell_occupied.
func ValidateMove(ctx context.Context, b *game.Board, rack []byte, mv *game.MoveProposal, j Judge, language string) ValidateResult {
	if mv.Direction == game.DirectionNone {
		return invalid("direction_invalid")
	}

	// Bounds and occupancy, stripping redundant placements.
	placements := make([]game.Placement, 0, len(mv.Placements))
	for _, p := range mv.Placements {
		if !b.Inside(p.Row, p.Col) {
			return invalid("out_of_bounds")
		}
		if existing := b.Letter(p.Row, p.Col); existing != 0 {
			if existing == p.Letter {
				continue
			}
			return invalid("cell_occupied")
		}
		placements = append(placements, p)
	}
	if len(placements) == 0 {
		return invalid("no_new_tiles")
	}

	detected := game.LineDirection(placements)
	if detected == game.DirectionNone {
		return invalid("not_in_one_line")
	}
	if detected != mv.Direction && len(placements) > 1 {
		return invalid("direction_mismatch")
	}
	if !game.NoGapsInLine(b, placements, mv.Direction) {
		return invalid("gaps_in_line")
	}

	if b.Empty() {
		if !game.FirstMoveCoversCenter(placements) {
			return invalid("first_move_must_cover_center")
		}
	} else if !game.ConnectedToExisting(b, placements) {
		return invalid("not_connected")
	}

	resolved, res := resolveAgainstRack(rack, placements, mv.Blanks)
	if !res.Valid {
		return res
	}

	// Provisionally place to extract words, then undo.
	b.PlaceLetters(resolved)
	words := game.ExtractAllWords(b, resolved)
	b.ClearLetters(resolved)

	if j != nil {
		if res := judgeWords(ctx, j, words, mv.Direction, language); !res.Valid {
			return res
		}
	}

	return ValidateResult{Valid: true, Placements: resolved}
}

// resolveAgainstRack checks multiset feasibility and resolves blanks. A
// literal rack letter is preferred over spending a wildcard when both are
// available.
func resolveAgainstRack(rack []byte, placements []game.Placement, blanks map[string]string) ([]game.Placement, ValidateResult) {
	counts := make(map[byte]int)
	for _, ch := range rack {
		counts[upper(ch)]++
	}

	blankOrdinal := 0
	out := make([]game.Placement, 0, len(placements))
	for _, p := range placements {
		ch := upper(p.Letter)
		if ch == game.Blank {
			mapped := resolveBlankLetter(p.Row, p.Col, blanks, blankOrdinal)
			if mapped == 0 {
				return nil, invalid("blank_has_no_mapping")
			}
			if counts[game.Blank] <= 0 {
				return nil, invalid("rack_missing_blank_for_mapping")
			}
			counts[game.Blank]--
			out = append(out, game.Placement{Row: p.Row, Col: p.Col, Letter: game.Blank, BlankAs: mapped})
			blankOrdinal++
			continue
		}
		if ch < 'A' || ch > 'Z' {
			return nil, invalid("letter_len_must_be_1")
		}
		switch {
		case counts[ch] > 0:
			counts[ch]--
			out = append(out, game.Placement{Row: p.Row, Col: p.Col, Letter: ch})
		case counts[game.Blank] > 0 && coordAllowsBlank(p.Row, p.Col, blanks, ch):
			counts[game.Blank]--
			out = append(out, game.Placement{Row: p.Row, Col: p.Col, Letter: game.Blank, BlankAs: ch})
		default:
			return nil, invalid(fmt.Sprintf("rack_missing_tile:%c", ch))
		}
	}
	return out, ValidateResult{Valid: true}
}

// judgeWords looks all formed words up in one lexicon call, distinguishing
// the primary word from cross-words in the failure reason.
func judgeWords(ctx context.Context, j Judge, words []game.WordFound, direction game.Direction, language string) ValidateResult {
	candidates := make([]game.WordFound, 0, len(words))
	texts := make([]string, 0, len(words))
	for _, wf := range words {
		if len(wf.Word) >= 2 {
			candidates = append(candidates, wf)
			texts = append(texts, wf.Word)
		}
	}
	if len(texts) == 0 {
		return ValidateResult{Valid: true}
	}
	verdict, err := j.Judge(ctx, texts, language)
	if err != nil {
		return invalid(fmt.Sprintf("judge_unavailable:%v", err))
	}
	if verdict.AllValid {
		return ValidateResult{Valid: true}
	}
	for i, wv := range verdict.Results {
		if wv.Valid || i >= len(candidates) {
			continue
		}
		if wordOrientation(candidates[i].Cells) == direction {
			return invalid(fmt.Sprintf("word_not_in_dict:%s", candidates[i].Word))
		}
		return invalid(fmt.Sprintf("cross_word_not_in_dict:%s", candidates[i].Word))
	}
	return invalid("word_not_in_dict:unknown")
}

func wordOrientation(cells []game.Coord) game.Direction {
	sameRow, sameCol := true, true
	for _, cc := range cells[1:] {
		if cc.Row != cells[0].Row {
			sameRow = false
		}
		if cc.Col != cells[0].Col {
			sameCol = false
		}
	}
	if sameRow {
		return game.Across
	}
	if sameCol {
		return game.Down
	}
	return game.DirectionNone
}

// resolveBlankLetter finds the mapped letter for a blank at (row, col).
// Supported key forms: "row,col", "?", and ordinal "?1","?2",...
func resolveBlankLetter(row, col int, blanks map[string]string, ordinal int) byte {
	if len(blanks) == 0 {
		return 0
	}
	if v, ok := blanks[strconv.Itoa(row)+","+strconv.Itoa(col)]; ok {
		return firstUpperLetter(v)
	}
	if v, ok := blanks["?"]; ok {
		return firstUpperLetter(v)
	}
	if v, ok := blanks["?"+strconv.Itoa(ordinal+1)]; ok {
		return firstUpperLetter(v)
	}
	return 0
}

// coordAllowsBlank reports whether the blanks mapping covers spending a
// wildcard as letter ch at (row, col).
func coordAllowsBlank(row, col int, blanks map[string]string, ch byte) bool {
	if len(blanks) == 0 {
		return false
	}
	if v, ok := blanks[strconv.Itoa(row)+","+strconv.Itoa(col)]; ok && firstUpperLetter(v) == ch {
		return true
	}
	if v, ok := blanks["?"]; ok && firstUpperLetter(v) == ch {
		return true
	}
	return false
}

func firstUpperLetter(s string) byte {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0
	}
	return s[0]
}

func upper(ch byte) byte {
	if ch >= 'a' && ch <= 'z' {
		return ch - 'a' + 'A'
	}
	return ch
}
