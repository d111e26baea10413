package scrabble

import "github.com/rocketscienceinc/scrabble-backend/internal/entity"

// BingoBonus - awarded for playing the whole rack in one move.
const BingoBonus = 50

// ScoreWord - letter premiums and word multipliers only count on cells that
// were covered by this move.
func ScoreWord(board *entity.Board, word Word) int {
	sum := 0
	multiplier := 1

	for _, cell := range word.Cells {
		value := cell.Tile.Value()

		if cell.New {
			bonus := board.BonusAt(cell.Position)
			value *= bonus.LetterMultiplier()
			multiplier *= bonus.WordMultiplier()
		}

		sum += value
	}

	return sum * multiplier
}

// Score - the total for a move that placed tilesPlaced tiles and formed words.
func Score(board *entity.Board, words []Word, tilesPlaced int) int {
	total := 0
	for _, word := range words {
		total += ScoreWord(board, word)
	}

	if IsBingo(tilesPlaced) {
		total += BingoBonus
	}

	return total
}

func IsBingo(tilesPlaced int) bool {
	return tilesPlaced == entity.RackSize
}
