package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
)

const (
	BoardSize = 15
	Center    = BoardSize / 2
)

var ErrOutOfBounds = errors.New("position is outside of the board")

// Bonus is the premium kind of a board cell.
type Bonus int

const (
	BonusNone Bonus = iota
	DoubleLetter
	TripleLetter
	DoubleWord
	TripleWord
)

func (that Bonus) String() string {
	switch that {
	case DoubleLetter:
		return "DL"
	case TripleLetter:
		return "TL"
	case DoubleWord:
		return "DW"
	case TripleWord:
		return "TW"
	default:
		return ""
	}
}

func (that Bonus) LetterMultiplier() int {
	switch that {
	case DoubleLetter:
		return 2
	case TripleLetter:
		return 3
	default:
		return 1
	}
}

func (that Bonus) WordMultiplier() int {
	switch that {
	case DoubleWord:
		return 2
	case TripleWord:
		return 3
	default:
		return 1
	}
}

// Position is a cell coordinate; X is the column and Y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (that Position) InBounds() bool {
	return that.X >= 0 && that.X < BoardSize && that.Y >= 0 && that.Y < BoardSize
}

func (that Position) String() string {
	return fmt.Sprintf("(%d,%d)", that.X, that.Y)
}

// Cell is one board square. Its bonus never changes once the board is built.
type Cell struct {
	Bonus    Bonus
	Tile     Tile
	Occupied bool
}

// PlacedTile is a tile sitting on the board.
type PlacedTile struct {
	Position
	Tile
}

// Board is the 15x15 grid.
type Board struct {
	cells [BoardSize][BoardSize]Cell
	tiles int
}

var premiumLayout = map[Bonus][]Position{
	TripleWord: {
		{0, 0}, {0, 7}, {0, 14}, {7, 0}, {7, 14}, {14, 0}, {14, 7}, {14, 14},
	},
	DoubleWord: {
		{1, 1}, {1, 13}, {2, 2}, {2, 12}, {3, 3}, {3, 11}, {4, 4}, {4, 10},
		{10, 4}, {10, 10}, {11, 3}, {11, 11}, {12, 2}, {12, 12}, {13, 1}, {13, 13},
		{7, 7},
	},
	TripleLetter: {
		{1, 5}, {1, 9}, {5, 1}, {5, 5}, {5, 9}, {5, 13},
		{9, 1}, {9, 5}, {9, 9}, {9, 13}, {13, 5}, {13, 9},
	},
	DoubleLetter: {
		{0, 3}, {0, 11}, {2, 6}, {2, 8}, {3, 0}, {3, 7}, {3, 14},
		{6, 2}, {6, 6}, {6, 8}, {6, 12}, {7, 3}, {7, 11},
		{8, 2}, {8, 6}, {8, 8}, {8, 12}, {11, 0}, {11, 7}, {11, 14},
		{12, 6}, {12, 8}, {14, 3}, {14, 11},
	},
}

// NewBoard - creates an empty board with the standard premium layout.
func NewBoard() *Board {
	board := &Board{}
	for bonus, positions := range premiumLayout {
		for _, pos := range positions {
			board.cells[pos.Y][pos.X].Bonus = bonus
		}
	}

	return board
}

// NewPlainBoard - creates an empty board without premium cells.
func NewPlainBoard() *Board {
	return &Board{}
}

// SetBonus - overrides a cell's premium. Only meant for building boards before play.
func (that *Board) SetBonus(pos Position, bonus Bonus) {
	if pos.InBounds() {
		that.cells[pos.Y][pos.X].Bonus = bonus
	}
}

func (that *Board) BonusAt(pos Position) Bonus {
	if !pos.InBounds() {
		return BonusNone
	}

	return that.cells[pos.Y][pos.X].Bonus
}

// TileAt - returns the tile at pos and whether the cell is occupied.
func (that *Board) TileAt(pos Position) (Tile, bool) {
	if !pos.InBounds() {
		return Tile{}, false
	}

	cell := that.cells[pos.Y][pos.X]

	return cell.Tile, cell.Occupied
}

func (that *Board) IsOccupied(pos Position) bool {
	_, ok := that.TileAt(pos)
	return ok
}

// Place - puts a tile on an empty cell. Occupied cells are never overwritten.
func (that *Board) Place(pos Position, tile Tile) error {
	if !pos.InBounds() {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}

	cell := &that.cells[pos.Y][pos.X]
	if cell.Occupied {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, pos)
	}

	cell.Tile = tile
	cell.Occupied = true
	that.tiles++

	return nil
}

func (that *Board) IsEmpty() bool {
	return that.tiles == 0
}

func (that *Board) TileCount() int {
	return that.tiles
}

// Tiles - every placed tile in row-major order.
func (that *Board) Tiles() []PlacedTile {
	placed := make([]PlacedTile, 0, that.tiles)
	for y := range BoardSize {
		for x := range BoardSize {
			if cell := that.cells[y][x]; cell.Occupied {
				placed = append(placed, PlacedTile{Position: Position{X: x, Y: y}, Tile: cell.Tile})
			}
		}
	}

	return placed
}

func (that *Board) Clone() *Board {
	clone := *that
	return &clone
}
