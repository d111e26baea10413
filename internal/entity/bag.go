package entity

import "math/rand/v2"

// TotalTiles - the size of a full bag.
const TotalTiles = 100

// BlankCount - blanks in a full bag.
const BlankCount = 2

// letterDistribution - canonical English tile frequencies.
var letterDistribution = []struct {
	letter rune
	count  int
}{
	{'A', 9}, {'B', 2}, {'C', 2}, {'D', 4}, {'E', 12}, {'F', 2}, {'G', 3},
	{'H', 2}, {'I', 9}, {'J', 1}, {'K', 1}, {'L', 4}, {'M', 2}, {'N', 6},
	{'O', 8}, {'P', 2}, {'Q', 1}, {'R', 6}, {'S', 4}, {'T', 6}, {'U', 4},
	{'V', 2}, {'W', 2}, {'X', 1}, {'Y', 2}, {'Z', 1},
}

// Bag holds the tiles that have not been drawn yet. It only ever shrinks.
type Bag struct {
	tiles []Tile
	rng   *rand.Rand
}

// NewBag - returns a full bag that draws using rng.
func NewBag(rng *rand.Rand) *Bag {
	tiles := make([]Tile, 0, TotalTiles)
	for _, entry := range letterDistribution {
		for range entry.count {
			tiles = append(tiles, LetterTile(entry.letter))
		}
	}

	for range BlankCount {
		tiles = append(tiles, BlankTile())
	}

	return &Bag{tiles: tiles, rng: rng}
}

// NewBagFrom - a bag holding exactly the given tiles.
func NewBagFrom(tiles []Tile, rng *rand.Rand) *Bag {
	own := make([]Tile, len(tiles))
	copy(own, tiles)

	return &Bag{tiles: own, rng: rng}
}

// Draw - removes up to n uniformly random tiles. It returns fewer when the bag runs short.
func (that *Bag) Draw(n int) []Tile {
	if n > len(that.tiles) {
		n = len(that.tiles)
	}

	drawn := make([]Tile, 0, n)
	for range n {
		idx := that.rng.IntN(len(that.tiles))
		drawn = append(drawn, that.tiles[idx])

		last := len(that.tiles) - 1
		that.tiles[idx] = that.tiles[last]
		that.tiles = that.tiles[:last]
	}

	return drawn
}

func (that *Bag) Len() int {
	return len(that.tiles)
}

func (that *Bag) IsEmpty() bool {
	return len(that.tiles) == 0
}
