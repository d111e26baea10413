package entity

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// RackSize - the maximum number of tiles a player holds.
const RackSize = 7

// BlankLetter - how an undesignated blank is rendered.
const BlankLetter = '?'

var ErrInvalidLetter = errors.New("invalid tile letter")

var letterValues = map[rune]int{
	'A': 1, 'E': 1, 'I': 1, 'L': 1, 'N': 1, 'O': 1, 'R': 1, 'S': 1, 'T': 1, 'U': 1,
	'D': 2, 'G': 2,
	'B': 3, 'C': 3, 'M': 3, 'P': 3,
	'F': 4, 'H': 4, 'V': 4, 'W': 4, 'Y': 4,
	'K': 5,
	'J': 8, 'X': 8,
	'Q': 10, 'Z': 10,
}

// Tile is a single game tile. A blank tile has no letter while it sits in a rack
// and takes the letter chosen by the player once it is placed on the board.
type Tile struct {
	Letter rune `json:"letter"`
	Blank  bool `json:"blank,omitempty"`
}

func LetterTile(letter rune) Tile {
	return Tile{Letter: letter}
}

func BlankTile() Tile {
	return Tile{Blank: true}
}

// Value - the tile's point value; blanks are always worth nothing.
func (that Tile) Value() int {
	if that.Blank {
		return 0
	}

	return letterValues[that.Letter]
}

// Matches reports whether a rack tile can be used for the given placed tile.
func (that Tile) Matches(placed Tile) bool {
	if that.Blank || placed.Blank {
		return that.Blank == placed.Blank
	}

	return that.Letter == placed.Letter
}

func (that Tile) String() string {
	if that.Letter == 0 {
		return string(BlankLetter)
	}

	return string(that.Letter)
}

// ParseLetter - normalizes a letter coming from a client.
func ParseLetter(s string) (rune, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLetter, s)
	}

	letter, _ := utf8.DecodeRuneInString(strings.ToUpper(s))
	if _, ok := letterValues[letter]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLetter, s)
	}

	return letter, nil
}

// LetterValue - the point value of a lettered tile, zero for unknown letters.
func LetterValue(letter rune) int {
	return letterValues[letter]
}
