package entity

import (
	"fmt"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
)

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rack      []Tile `json:"rack,omitempty"`
	Score     int    `json:"score"`
	LastScore int    `json:"last_score"`
	Connected bool   `json:"connected"`
}

func NewPlayer(id, name string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Rack:      make([]Tile, 0, RackSize),
		Connected: true,
	}
}

// HasTiles - reports whether every placed tile can be taken from the rack.
func (that *Player) HasTiles(placed []Tile) bool {
	_, err := takeTiles(that.Rack, placed)
	return err == nil
}

// RemoveTiles - takes the placed tiles out of the rack. The rack is untouched on error.
func (that *Player) RemoveTiles(placed []Tile) error {
	rest, err := takeTiles(that.Rack, placed)
	if err != nil {
		return err
	}

	that.Rack = rest

	return nil
}

func (that *Player) AddTiles(tiles []Tile) {
	that.Rack = append(that.Rack, tiles...)
}

func (that *Player) IsRackEmpty() bool {
	return len(that.Rack) == 0
}

func takeTiles(rack, placed []Tile) ([]Tile, error) {
	rest := make([]Tile, len(rack))
	copy(rest, rack)

	for _, tile := range placed {
		idx := -1
		for i, candidate := range rest {
			if candidate.Matches(tile) {
				idx = i
				break
			}
		}

		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", apperror.ErrTilesNotInRack, tile)
		}

		rest = append(rest[:idx], rest[idx+1:]...)
	}

	return rest, nil
}
