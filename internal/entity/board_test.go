package entity

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
)

func TestBoard_Layout(t *testing.T) {
	// Given: a standard board
	board := NewBoard()

	// Then: premium cells follow the classic layout
	assert.Equal(t, TripleWord, board.BonusAt(Position{X: 0, Y: 0}))
	assert.Equal(t, DoubleWord, board.BonusAt(Position{X: Center, Y: Center}))
	assert.Equal(t, TripleLetter, board.BonusAt(Position{X: 5, Y: 1}))
	assert.Equal(t, DoubleLetter, board.BonusAt(Position{X: 3, Y: 0}))
	assert.Equal(t, BonusNone, board.BonusAt(Position{X: 1, Y: 0}))
	assert.True(t, board.IsEmpty())
}

func TestBoard_Place(t *testing.T) {
	t.Run("Places a tile on an empty cell", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard()
		pos := Position{X: 7, Y: 7}

		// When: placing a tile
		err := board.Place(pos, LetterTile('A'))

		// Then: the tile is there
		require.NoError(t, err)
		tile, ok := board.TileAt(pos)
		assert.True(t, ok)
		assert.Equal(t, 'A', tile.Letter)
		assert.Equal(t, 1, board.TileCount())
	})

	t.Run("Rejects placement on an occupied cell", func(t *testing.T) {
		// Given: a board with a tile at the center
		board := NewBoard()
		pos := Position{X: 7, Y: 7}
		require.NoError(t, board.Place(pos, LetterTile('A')))

		// When: placing another tile on the same cell
		err := board.Place(pos, LetterTile('B'))

		// Then: it fails and the original tile stays
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
		tile, _ := board.TileAt(pos)
		assert.Equal(t, 'A', tile.Letter)
	})

	t.Run("Rejects positions outside of the board", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard()

		// When: placing a tile off the grid
		err := board.Place(Position{X: BoardSize, Y: 0}, LetterTile('A'))

		// Then: it fails
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})

	t.Run("Clone does not share cells", func(t *testing.T) {
		// Given: a board and its clone
		board := NewBoard()
		clone := board.Clone()

		// When: placing on the clone
		require.NoError(t, clone.Place(Position{X: 7, Y: 7}, LetterTile('A')))

		// Then: the original is untouched
		assert.True(t, board.IsEmpty())
	})
}

func TestBag(t *testing.T) {
	t.Run("A full bag holds one hundred tiles with two blanks", func(t *testing.T) {
		// Given: a new bag
		bag := NewBag(rand.New(rand.NewPCG(7, 7)))

		// When: drawing everything
		tiles := bag.Draw(TotalTiles)

		// Then: all tiles came out and two of them are blank
		blanks := 0
		for _, tile := range tiles {
			if tile.Blank {
				blanks++
			}
		}

		assert.Len(t, tiles, TotalTiles)
		assert.Equal(t, BlankCount, blanks)
		assert.True(t, bag.IsEmpty())
	})

	t.Run("Draw returns fewer tiles when the bag runs short", func(t *testing.T) {
		// Given: a bag with three tiles left
		bag := NewBag(rand.New(rand.NewPCG(1, 1)))
		bag.Draw(TotalTiles - 3)

		// When: drawing a full rack
		tiles := bag.Draw(RackSize)

		// Then: only the remaining three come out
		assert.Len(t, tiles, 3)
		assert.Equal(t, 0, bag.Len())
	})
}

func TestPlayer_RemoveTiles(t *testing.T) {
	t.Run("Removes matching tiles including a designated blank", func(t *testing.T) {
		// Given: a rack with C, A, T and a blank
		player := NewPlayer("alice", "Alice")
		player.AddTiles([]Tile{LetterTile('C'), LetterTile('A'), LetterTile('T'), BlankTile()})

		// When: removing C and a blank played as S
		err := player.RemoveTiles([]Tile{LetterTile('C'), {Letter: 'S', Blank: true}})

		// Then: A and T remain
		require.NoError(t, err)
		assert.Equal(t, []Tile{LetterTile('A'), LetterTile('T')}, player.Rack)
	})

	t.Run("Leaves the rack untouched when a tile is missing", func(t *testing.T) {
		// Given: a rack with a single A
		player := NewPlayer("alice", "Alice")
		player.AddTiles([]Tile{LetterTile('A'), LetterTile('B')})

		// When: removing two As
		err := player.RemoveTiles([]Tile{LetterTile('A'), LetterTile('A')})

		// Then: it fails and the rack is unchanged
		assert.ErrorIs(t, err, apperror.ErrTilesNotInRack)
		assert.Len(t, player.Rack, 2)
	})
}

func TestParseLetter(t *testing.T) {
	letter, err := ParseLetter(" q ")
	require.NoError(t, err)
	assert.Equal(t, 'Q', letter)
	assert.Equal(t, 10, LetterValue(letter))

	_, err = ParseLetter("7")
	assert.ErrorIs(t, err, ErrInvalidLetter)
}
