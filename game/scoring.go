package game

// BingoBonus is the flat bonus for playing all 7 rack tiles in one move.
// Applied by the caller, not ScoreWords, since it depends on rack size.
const BingoBonus = 50

// ScoreWords computes the total score for a move and a per-word breakdown.
// Letter premiums apply only to cells in the current placements whose premium
// has not been consumed yet; word multipliers multiply across the word's new
// DW/TW cells. Blank tiles score zero regardless of their resolved letter.
func ScoreWords(b *Board, placements []Placement, words []WordFound) (int, []ScoreBreakdown) {
	newCells := make(map[Coord]bool, len(placements))
	for _, p := range placements {
		newCells[Coord{p.Row, p.Col}] = true
	}

	total := 0
	breakdowns := make([]ScoreBreakdown, 0, len(words))
	for _, wf := range words {
		wordMultiplier := 1
		wordPoints := 0
		letterBonus := 0
		for _, cc := range wf.Cells {
			cell := b.Cells[cc.Row][cc.Col]
			base := 0
			if !cell.IsBlank {
				base = TilePoints(cell.Letter)
			}
			if newCells[cc] && cell.Premium != PremiumNone && !cell.PremiumUsed {
				switch cell.Premium {
				case PremiumDL:
					letterBonus += base // one extra copy, 2x in total
				case PremiumTL:
					letterBonus += base * 2
				case PremiumDW:
					wordMultiplier *= 2
				case PremiumTW:
					wordMultiplier *= 3
				}
			}
			wordPoints += base
		}
		wordTotal := (wordPoints + letterBonus) * wordMultiplier
		total += wordTotal
		breakdowns = append(breakdowns, ScoreBreakdown{
			Word:              wf.Word,
			BasePoints:        wordPoints,
			LetterBonusPoints: letterBonus,
			WordMultiplier:    wordMultiplier,
			Total:             wordTotal,
		})
	}
	return total, breakdowns
}

// ApplyPremiumConsumption marks the premiums of newly placed cells as used.
// Runs once after scoring on commit; idempotent per cell.
func ApplyPremiumConsumption(b *Board, placements []Placement) {
	for _, p := range placements {
		cell := &b.Cells[p.Row][p.Col]
		if cell.Premium != PremiumNone {
			cell.PremiumUsed = true
		}
	}
}
