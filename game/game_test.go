package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, rackA, rackB string) *Game {
	t.Helper()
	g, err := NewGame(NewBoard(), NewTileBag(1), []*PlayerState{
		{Name: "alice", Rack: []byte(rackA)},
		{Name: "bob", Rack: []byte(rackB)},
	}, 0)
	require.NoError(t, err)
	return g
}

func TestPlayMoveFirstMove(t *testing.T) {
	g := newTestGame(t, "CATXYZQ", "AEIOUNS")

	placements := []Placement{
		{Row: 7, Col: 6, Letter: 'C'},
		{Row: 7, Col: 7, Letter: 'A'},
		{Row: 7, Col: 8, Letter: 'T'},
	}
	points, err := g.PlayMove(placements)
	require.NoError(t, err)
	require.Equal(t, 10, points, "CAT doubled on the center star")

	alice := g.Players[0]
	require.Equal(t, 10, alice.Score)
	require.Len(t, alice.Rack, RackSize, "rack refilled from the bag")
	require.Equal(t, 1, g.Current, "turn advanced")
	require.True(t, g.Board.Cells[7][7].PremiumUsed, "center premium consumed")
}

func TestPlayMoveRejections(t *testing.T) {
	g := newTestGame(t, "CATXYZQ", "AEIOUNS")

	t.Run("first move off center", func(t *testing.T) {
		_, err := g.PlayMove([]Placement{{Row: 0, Col: 0, Letter: 'C'}, {Row: 0, Col: 1, Letter: 'A'}})
		require.ErrorContains(t, err, "first_move_must_cover_center")
	})

	t.Run("scattered placements", func(t *testing.T) {
		_, err := g.PlayMove([]Placement{{Row: 7, Col: 7, Letter: 'C'}, {Row: 8, Col: 8, Letter: 'A'}})
		require.ErrorContains(t, err, "not_in_one_line")
	})

	t.Run("gap in line", func(t *testing.T) {
		_, err := g.PlayMove([]Placement{{Row: 7, Col: 7, Letter: 'C'}, {Row: 7, Col: 9, Letter: 'A'}})
		require.ErrorContains(t, err, "gaps_in_line")
	})

	t.Run("runs off the board", func(t *testing.T) {
		placements := make([]Placement, 0, 9)
		for c := 7; c <= 15; c++ {
			placements = append(placements, Placement{Row: 7, Col: c, Letter: 'A'})
		}
		_, err := g.PlayMove(placements)
		require.ErrorContains(t, err, "out_of_bounds")
	})

	t.Run("negative coordinate", func(t *testing.T) {
		_, err := g.PlayMove([]Placement{{Row: -1, Col: 7, Letter: 'C'}})
		require.ErrorContains(t, err, "out_of_bounds")
	})

	t.Run("empty move", func(t *testing.T) {
		_, err := g.PlayMove(nil)
		require.Error(t, err)
	})
}

func TestPlayMoveDisconnected(t *testing.T) {
	g := newTestGame(t, "CATXYZQ", "TOPQRSU")
	_, err := g.PlayMove([]Placement{
		{Row: 7, Col: 6, Letter: 'C'},
		{Row: 7, Col: 7, Letter: 'A'},
		{Row: 7, Col: 8, Letter: 'T'},
	})
	require.NoError(t, err)

	_, err = g.PlayMove([]Placement{
		{Row: 0, Col: 0, Letter: 'T'},
		{Row: 0, Col: 1, Letter: 'O'},
	})
	require.ErrorContains(t, err, "not_connected")
}

func TestPlayMoveBingoBonus(t *testing.T) {
	g := newTestGame(t, "AAAAAAA", "AEIOUNS")
	placements := make([]Placement, 0, RackSize)
	for c := 4; c <= 10; c++ {
		placements = append(placements, Placement{Row: 7, Col: c, Letter: 'A'})
	}
	points, err := g.PlayMove(placements)
	require.NoError(t, err)
	// 7 base, doubled on the center, plus the 50-point bingo.
	require.Equal(t, 7*2+BingoBonus, points)
}

func TestPassTwiceEndsGame(t *testing.T) {
	g := newTestGame(t, "QZ", "AB")

	for i := 0; i < 3; i++ {
		require.NoError(t, g.PassTurn())
		require.False(t, g.Ended)
	}
	require.NoError(t, g.PassTurn())

	require.True(t, g.Ended)
	require.Equal(t, EndAllPlayersPassedTwice, g.EndReason)
	// No finisher: everyone docked their own leftover only.
	require.Equal(t, -20, g.Players[0].Score)
	require.Equal(t, -4, g.Players[1].Score)
	require.Equal(t, map[string]int{"alice": 20, "bob": 4}, g.Leftover)

	require.Error(t, g.PassTurn(), "no moves after the game ended")
}

func TestEndgameSettlementWithFinisher(t *testing.T) {
	g := newTestGame(t, "T", "QZ")
	g.Bag.Draw(100)
	g.Board.Cells[7][6].Letter = 'C'
	g.Board.Cells[7][7].Letter = 'A'

	points, err := g.PlayMove([]Placement{{Row: 7, Col: 8, Letter: 'T'}})
	require.NoError(t, err)
	require.Equal(t, 5, points, "no premium fires on the new cell")

	require.True(t, g.Ended)
	require.Equal(t, EndBagEmptyAndPlayerOut, g.EndReason)
	// Finisher gains the opponent's 20 leftover points; the opponent loses them.
	require.Equal(t, 5+20, g.Players[0].Score)
	require.Equal(t, -20, g.Players[1].Score)
	require.Empty(t, g.Players[0].Rack)
}

func TestExchangeTiles(t *testing.T) {
	g := newTestGame(t, "CATXYZQ", "AEIOUNS")

	t.Run("swaps named tiles", func(t *testing.T) {
		require.NoError(t, g.ExchangeTiles([]byte("QZ")))
		alice := g.Players[0]
		require.Len(t, alice.Rack, RackSize)
		require.Equal(t, 1, g.Current)
	})

	t.Run("rejects tiles not held", func(t *testing.T) {
		err := g.ExchangeTiles([]byte("Q"))
		require.ErrorContains(t, err, "rack_missing_tile:Q")
	})

	t.Run("requires a full rack in the bag", func(t *testing.T) {
		g := newTestGame(t, "CATXYZQ", "AEIOUNS")
		g.Bag.Draw(94)
		require.Equal(t, 6, g.Bag.Remaining())
		err := g.ExchangeTiles([]byte("C"))
		require.Error(t, err)
	})
}

// tileCensus counts every tile by symbol across racks, bag and board. Blanks
// on the board count as the blank symbol, not the letter they stand for.
func tileCensus(g *Game) map[byte]int {
	counts := map[byte]int{}
	for _, p := range g.Players {
		for _, ch := range p.Rack {
			counts[ch]++
		}
	}
	for _, ch := range g.Bag.Tiles() {
		counts[ch]++
	}
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			cell := g.Board.Cells[r][c]
			if cell.Letter == 0 {
				continue
			}
			if cell.IsBlank {
				counts[Blank]++
			} else {
				counts[cell.Letter]++
			}
		}
	}
	return counts
}

func TestTileConservationAcrossTurns(t *testing.T) {
	rackA, rackB := []byte("CATXYZQ"), []byte("AEIOUNS")

	// The bag holds the full supply minus the two starting racks, so every
	// symbol's total across racks, bag and board must stay at the official
	// distribution through plays, refills, exchanges and passes.
	supply := TileDistribution()
	for _, ch := range string(rackA) + string(rackB) {
		require.Positive(t, supply[byte(ch)])
		supply[byte(ch)]--
	}
	var rest []byte
	for letter := byte('A'); letter <= 'Z'; letter++ {
		for i := 0; i < supply[letter]; i++ {
			rest = append(rest, letter)
		}
	}
	for i := 0; i < supply[Blank]; i++ {
		rest = append(rest, Blank)
	}

	g, err := NewGame(NewBoard(), NewTileBagFromTiles(rest, 3), []*PlayerState{
		{Name: "alice", Rack: append([]byte(nil), rackA...)},
		{Name: "bob", Rack: append([]byte(nil), rackB...)},
	}, 0)
	require.NoError(t, err)

	want := TileDistribution()
	require.Equal(t, want, tileCensus(g), "initial supply")

	_, err = g.PlayMove([]Placement{
		{Row: 7, Col: 6, Letter: 'C'},
		{Row: 7, Col: 7, Letter: 'A'},
		{Row: 7, Col: 8, Letter: 'T'},
	})
	require.NoError(t, err)
	require.Equal(t, want, tileCensus(g), "after a play with refill")

	require.NoError(t, g.ExchangeTiles([]byte("AEI")))
	require.Equal(t, want, tileCensus(g), "after an exchange")

	require.NoError(t, g.PassTurn())
	require.NoError(t, g.PassTurn())
	require.Equal(t, want, tileCensus(g), "after passes")
}

func TestDeclareNoMovesAvailable(t *testing.T) {
	g := newTestGame(t, "Q", "Z")
	g.DeclareNoMovesAvailable()
	require.True(t, g.Ended)
	require.Equal(t, EndNoMovesAvailable, g.EndReason)
	require.Equal(t, -10, g.Players[0].Score)
	require.Equal(t, -10, g.Players[1].Score)
}
