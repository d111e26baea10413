package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
)

const (
	StatusWaiting  = "awaiting_start"
	StatusOngoing  = "in_progress"
	StatusFinished = "game_over"
)

const (
	EndNormal      = "normal"
	EndStalemate   = "stalemate"
	EndResignation = "resignation"
	EndDraw        = "draw"
	EndForfeit     = "forfeit"
)

const PlayersPerGame = 2

var ErrUnknownGameStatus = errors.New("unknown game status")

type DrawOffer struct {
	PlayerID  string    `json:"player_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Game is the state of one running session. It is owned by a single room and
// must only be touched from that room's queue.
type Game struct {
	ID               string
	Board            *Board
	Bag              *Bag
	Players          []*Player
	ActiveIdx        int
	ConsecutiveSkips int
	Moves            int

	Status    string
	EndReason string
	WinnerID  string

	DrawOffer     *DrawOffer
	TurnDeadline  time.Time
	TurnPaused    bool
	TurnRemaining time.Duration
}

func NewGame(id string) *Game {
	return &Game{
		ID:     id,
		Board:  NewBoard(),
		Status: StatusWaiting,
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) ActivePlayer() *Player {
	if len(that.Players) == 0 {
		return nil
	}

	return that.Players[that.ActiveIdx]
}

func (that *Game) IsActive(playerID string) bool {
	active := that.ActivePlayer()
	return active != nil && active.ID == playerID
}

func (that *Game) PlayerByID(id string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID == id {
			return player, true
		}
	}

	return nil, false
}

// Opponent - the other player of a two-player game.
func (that *Game) Opponent(id string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID != id {
			return player, true
		}
	}

	return nil, false
}

// AdvanceTurn - moves the turn pointer to the next player.
func (that *Game) AdvanceTurn() {
	if len(that.Players) == 0 {
		return
	}

	that.ActiveIdx = (that.ActiveIdx + 1) % len(that.Players)
}

// TileTotal - tiles in racks, in the bag and on the board. Constant for the whole game.
func (that *Game) TileTotal() int {
	total := that.Board.TileCount()
	if that.Bag != nil {
		total += that.Bag.Len()
	}

	for _, player := range that.Players {
		total += len(player.Rack)
	}

	return total
}

// Finish - ends the game and cancels everything bound to the running turn.
func (that *Game) Finish(reason, winnerID string) {
	that.Status = StatusFinished
	that.EndReason = reason
	that.WinnerID = winnerID
	that.DrawOffer = nil
	that.TurnDeadline = time.Time{}
	that.TurnPaused = false
	that.TurnRemaining = 0
}

// Leader - the player with the strictly highest score, empty on a tie.
func (that *Game) Leader() string {
	leader := ""
	best := -1
	tie := false

	for _, player := range that.Players {
		switch {
		case player.Score > best:
			best = player.Score
			leader = player.ID
			tie = false
		case player.Score == best:
			tie = true
		}
	}

	if tie {
		return ""
	}

	return leader
}

// Outcome - how the finished game ended for the given player.
func (that *Game) Outcome(playerID string) Outcome {
	switch that.WinnerID {
	case "":
		return OutcomeDraw
	case playerID:
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}
