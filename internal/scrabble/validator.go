package scrabble

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/lexicon"
)

// Placement - a tile the player puts on the board this turn.
type Placement = entity.PlacedTile

type axis struct {
	dx, dy int
}

var (
	horizontal = axis{dx: 1}
	vertical   = axis{dy: 1}
)

func (that axis) cross() axis {
	return axis{dx: that.dy, dy: that.dx}
}

// WordCell - one letter of a formed word.
type WordCell struct {
	entity.Position
	Tile entity.Tile
	New  bool
}

// Word - a run of two or more tiles formed by a move.
type Word struct {
	Cells []WordCell
}

func (that Word) Text() string {
	var sb strings.Builder
	for _, cell := range that.Cells {
		sb.WriteRune(cell.Tile.Letter)
	}

	return sb.String()
}

// Validate - checks a move against the board and the lexicon without touching
// the board. It returns the primary word first followed by cross words.
func Validate(board *entity.Board, placements []Placement, lex lexicon.Lexicon) ([]Word, error) {
	dir, err := checkGeometry(board, placements)
	if err != nil {
		return nil, err
	}

	words := extractWords(board, placements, dir)
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: move does not form a word", apperror.ErrBadGeometry)
	}

	for _, word := range words {
		if !lex.IsValidWord(word.Text()) {
			return nil, fmt.Errorf("%w: %s", apperror.ErrWordNotFound, word.Text())
		}
	}

	return words, nil
}

func checkGeometry(board *entity.Board, placements []Placement) (axis, error) {
	if len(placements) == 0 {
		return axis{}, fmt.Errorf("%w: no tiles placed", apperror.ErrBadGeometry)
	}

	if len(placements) > entity.RackSize {
		return axis{}, fmt.Errorf("%w: too many tiles", apperror.ErrBadGeometry)
	}

	seen := make(map[entity.Position]struct{}, len(placements))
	for _, placement := range placements {
		if !placement.Position.InBounds() {
			return axis{}, fmt.Errorf("%w: %s is off the board", apperror.ErrBadGeometry, placement.Position)
		}

		if placement.Tile.Letter == 0 {
			return axis{}, fmt.Errorf("%w: %s has no letter", apperror.ErrBadGeometry, placement.Position)
		}

		if _, ok := seen[placement.Position]; ok {
			return axis{}, fmt.Errorf("%w: %s used twice", apperror.ErrBadGeometry, placement.Position)
		}
		seen[placement.Position] = struct{}{}

		if board.IsOccupied(placement.Position) {
			return axis{}, fmt.Errorf("%w: %s", apperror.ErrCellOccupied, placement.Position)
		}
	}

	dir, ok := lineOf(board, placements)
	if !ok {
		return axis{}, fmt.Errorf("%w: tiles are not in one row or column", apperror.ErrBadGeometry)
	}

	first, last := bounds(placements, dir)
	for pos := first; pos != step(last, dir, 1); pos = step(pos, dir, 1) {
		if _, placed := seen[pos]; !placed && !board.IsOccupied(pos) {
			return axis{}, fmt.Errorf("%w: gap at %s", apperror.ErrBadGeometry, pos)
		}
	}

	if board.IsEmpty() {
		if _, ok := seen[entity.Position{X: entity.Center, Y: entity.Center}]; !ok {
			return axis{}, fmt.Errorf("%w: first move must cover the center", apperror.ErrBadGeometry)
		}

		return dir, nil
	}

	for _, placement := range placements {
		if touchesTiles(board, placement.Position) {
			return dir, nil
		}
	}

	return axis{}, fmt.Errorf("%w: move is not connected", apperror.ErrBadGeometry)
}

// lineOf - the axis shared by all placements. A lone tile takes the axis of
// its existing neighbours, preferring the row.
func lineOf(board *entity.Board, placements []Placement) (axis, bool) {
	if len(placements) == 1 {
		pos := placements[0].Position
		if board.IsOccupied(step(pos, horizontal, -1)) || board.IsOccupied(step(pos, horizontal, 1)) {
			return horizontal, true
		}

		if board.IsOccupied(step(pos, vertical, -1)) || board.IsOccupied(step(pos, vertical, 1)) {
			return vertical, true
		}

		return horizontal, true
	}

	sameRow, sameCol := true, true
	for _, placement := range placements[1:] {
		sameRow = sameRow && placement.Y == placements[0].Y
		sameCol = sameCol && placement.X == placements[0].X
	}

	switch {
	case sameRow:
		return horizontal, true
	case sameCol:
		return vertical, true
	default:
		return axis{}, false
	}
}

func bounds(placements []Placement, dir axis) (entity.Position, entity.Position) {
	first, last := placements[0].Position, placements[0].Position
	for _, placement := range placements[1:] {
		if offset(placement.Position, dir) < offset(first, dir) {
			first = placement.Position
		}

		if offset(placement.Position, dir) > offset(last, dir) {
			last = placement.Position
		}
	}

	return first, last
}

func extractWords(board *entity.Board, placements []Placement, dir axis) []Word {
	placed := make(map[entity.Position]entity.Tile, len(placements))
	for _, placement := range placements {
		placed[placement.Position] = placement.Tile
	}

	var words []Word

	if primary := wordThrough(board, placed, placements[0].Position, dir); len(primary.Cells) > 1 {
		words = append(words, primary)
	}

	for _, placement := range placements {
		if crossWord := wordThrough(board, placed, placement.Position, dir.cross()); len(crossWord.Cells) > 1 {
			words = append(words, crossWord)
		}
	}

	return words
}

// wordThrough - the maximal run of tiles through pos along dir.
func wordThrough(board *entity.Board, placed map[entity.Position]entity.Tile, pos entity.Position, dir axis) Word {
	tileAt := func(p entity.Position) (entity.Tile, bool, bool) {
		if tile, ok := placed[p]; ok {
			return tile, true, true
		}

		tile, ok := board.TileAt(p)

		return tile, ok, false
	}

	start := pos
	for {
		prev := step(start, dir, -1)
		if _, ok, _ := tileAt(prev); !ok {
			break
		}
		start = prev
	}

	var word Word
	for p := start; ; p = step(p, dir, 1) {
		tile, ok, isNew := tileAt(p)
		if !ok {
			break
		}

		word.Cells = append(word.Cells, WordCell{Position: p, Tile: tile, New: isNew})
	}

	return word
}

func touchesTiles(board *entity.Board, pos entity.Position) bool {
	for _, dir := range []axis{horizontal, vertical} {
		if board.IsOccupied(step(pos, dir, -1)) || board.IsOccupied(step(pos, dir, 1)) {
			return true
		}
	}

	return false
}

func step(pos entity.Position, dir axis, n int) entity.Position {
	return entity.Position{X: pos.X + dir.dx*n, Y: pos.Y + dir.dy*n}
}

func offset(pos entity.Position, dir axis) int {
	return pos.X*dir.dx + pos.Y*dir.dy
}
