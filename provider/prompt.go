package provider

import (
	"fmt"
	"strings"

	"scrabble/game"
)

// BuildPrompt assembles the system+user prompt for a move proposal: the rules
// the provider must obey, a premium-square summary for score planning, the
// compact state, and an optional retry hint.
func BuildPrompt(compactState, language string, b *game.Board, retryHint string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an expert Scrabble player for the %s language. ", language)
	sb.WriteString("Play to win and obey official Scrabble rules. Reply with JSON only. ")
	sb.WriteString("Do NOT overwrite existing board letters; place only on empty cells. ")
	sb.WriteString("Placements must form a single contiguous line with no gaps and must connect to existing letters after the first move. ")
	sb.WriteString("Use only letters from ai_rack; for '?' provide a mapping in 'blanks' with the chosen uppercase letter. ")
	fmt.Fprintf(&sb, "Do not glue your letters to adjacent existing letters unless the resulting main word is a valid %s word; ", language)
	sb.WriteString("use intersections and hooks properly, and do not extend an existing word into a non-word. ")
	sb.WriteString("The field 'word' must equal the final main word formed on the board. ")
	sb.WriteString("If no legal move exists you may pass (set 'pass': true) or exchange (set 'exchange': [letters]). ")
	sb.WriteString("If the board is empty, the first move must cross the center star at row=7,col=7. Coordinates are 0-based. ")
	sb.WriteString("Always return a JSON object with keys: start:{row,col}, direction:'ACROSS'|'DOWN', placements:[{row,col,letter}], ")
	sb.WriteString("optional blanks mapping keyed by 'row,col' (e.g. '7,7':'R'), optional pass (boolean), optional exchange, and optional word. ")

	if summary := premiumSummary(b); summary != "" {
		sb.WriteString(summary)
		sb.WriteString(" Prioritize TL/DL for high-value letters and span DW/TW with the main word when possible; ")
		sb.WriteString("combining word multipliers in one move (DW+DW=4x, TW+TW=9x) yields maximal score. ")
	}

	sb.WriteString("\nSanity rules:\n")
	sb.WriteString("- Place tiles in exactly one line (ACROSS or DOWN); no gaps.\n")
	fmt.Fprintf(&sb, "- All cross-words formed by your placements must be valid %s words.\n", language)
	sb.WriteString("- Provide a 'blanks' mapping for every '?' used.\n")
	fmt.Fprintf(&sb, "\nGiven this compact state, propose exactly one move:\n%s", compactState)

	if retryHint != "" {
		fmt.Fprintf(&sb, "\nHINT:%s", retryHint)
	}
	return sb.String()
}

// premiumSummary lists the coordinates of unconsumed premium squares.
func premiumSummary(b *game.Board) string {
	if b == nil {
		return ""
	}
	coords := map[game.Premium][]string{}
	for r := 0; r < game.BoardSize; r++ {
		for c := 0; c < game.BoardSize; c++ {
			cell := b.Cells[r][c]
			if cell.Premium != game.PremiumNone && !cell.PremiumUsed {
				coords[cell.Premium] = append(coords[cell.Premium], fmt.Sprintf("(%d,%d)", r, c))
			}
		}
	}
	if len(coords) == 0 {
		return ""
	}
	return fmt.Sprintf("Premiums (0-based row,col): TW:[%s]; DW:[%s]; TL:[%s]; DL:[%s].",
		strings.Join(coords[game.PremiumTW], ","),
		strings.Join(coords[game.PremiumDW], ","),
		strings.Join(coords[game.PremiumTL], ","),
		strings.Join(coords[game.PremiumDL], ","))
}
