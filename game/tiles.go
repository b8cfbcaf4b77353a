package game

import (
	"golang.org/x/exp/rand"
)

// Official English Scrabble letter values.
var tilePoints = map[byte]int{
	'A': 1, 'E': 1, 'I': 1, 'L': 1, 'N': 1, 'O': 1, 'R': 1, 'S': 1, 'T': 1, 'U': 1,
	'D': 2, 'G': 2,
	'B': 3, 'C': 3, 'M': 3, 'P': 3,
	'F': 4, 'H': 4, 'V': 4, 'W': 4, 'Y': 4,
	'K': 5,
	'J': 8, 'X': 8,
	'Q': 10, 'Z': 10,
	Blank: 0,
}

// Official English tile distribution, 100 tiles.
var tileDistribution = map[byte]int{
	'A': 9, 'B': 2, 'C': 2, 'D': 4, 'E': 12, 'F': 2, 'G': 3, 'H': 2, 'I': 9,
	'J': 1, 'K': 1, 'L': 4, 'M': 2, 'N': 6, 'O': 8, 'P': 2, 'Q': 1, 'R': 6,
	'S': 4, 'T': 6, 'U': 4, 'V': 2, 'W': 2, 'X': 1, 'Y': 2, 'Z': 1, Blank: 2,
}

// TilePoints returns the point value of a tile symbol, 0 for unknown or blank.
func TilePoints(letter byte) int {
	return tilePoints[letter]
}

// TileDistribution returns the total supply per tile symbol.
func TileDistribution() map[byte]int {
	out := make(map[byte]int, len(tileDistribution))
	for k, v := range tileDistribution {
		out[k] = v
	}
	return out
}

// RackSize is the number of tiles a player holds.
const RackSize = 7

// TileBag holds the undrawn tiles. A fixed seed yields the same draw sequence,
// which makes game replays reproducible.
type TileBag struct {
	tiles []byte
	rng   *rand.Rand
}

// NewTileBag fills the bag from the standard distribution and shuffles it with
// the given seed.
func NewTileBag(seed uint64) *TileBag {
	bag := &TileBag{rng: rand.New(rand.NewSource(seed))}
	for letter := byte('A'); letter <= 'Z'; letter++ {
		for i := 0; i < tileDistribution[letter]; i++ {
			bag.tiles = append(bag.tiles, letter)
		}
	}
	for i := 0; i < tileDistribution[Blank]; i++ {
		bag.tiles = append(bag.tiles, Blank)
	}
	bag.rng.Shuffle(len(bag.tiles), func(i, j int) {
		bag.tiles[i], bag.tiles[j] = bag.tiles[j], bag.tiles[i]
	})
	return bag
}

// NewTileBagFromTiles restores a bag with the exact given order (used when
// loading a saved game). The seed only affects future PutBack shuffles.
func NewTileBagFromTiles(tiles []byte, seed uint64) *TileBag {
	bag := &TileBag{rng: rand.New(rand.NewSource(seed))}
	bag.tiles = append(bag.tiles, tiles...)
	return bag
}

// Draw removes and returns up to n tiles from the front of the bag.
func (b *TileBag) Draw(n int) []byte {
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	out := make([]byte, n)
	copy(out, b.tiles[:n])
	b.tiles = b.tiles[n:]
	return out
}

// PutBack returns tiles to the bag and reshuffles.
func (b *TileBag) PutBack(letters []byte) {
	b.tiles = append(b.tiles, letters...)
	b.rng.Shuffle(len(b.tiles), func(i, j int) {
		b.tiles[i], b.tiles[j] = b.tiles[j], b.tiles[i]
	})
}

// Exchange puts the given letters back and draws the same count. The minimum
// 7-tiles-in-bag rule is enforced by the caller, not here.
func (b *TileBag) Exchange(letters []byte) []byte {
	count := len(letters)
	b.PutBack(letters)
	return b.Draw(count)
}

// Remaining reports how many tiles are left.
func (b *TileBag) Remaining() int {
	return len(b.tiles)
}

// Tiles returns a copy of the remaining tiles in draw order.
func (b *TileBag) Tiles() []byte {
	out := make([]byte, len(b.tiles))
	copy(out, b.tiles)
	return out
}
