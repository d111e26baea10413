package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
)

const resultTimeout = 5 * time.Second

type gameEngine interface {
	Start(game *entity.Game, players []*entity.Player) error
	ApplyMove(game *entity.Game, playerID string, placements []scrabble.Placement) (*scrabble.MoveResult, error)
	SkipTurn(game *entity.Game, playerID string) error
	TimeoutTurn(game *entity.Game) (string, error)
	TurnExpired(game *entity.Game) bool
	Resign(game *entity.Game, playerID string) error
	Forfeit(game *entity.Game, playerID string) error
	OfferDraw(game *entity.Game, playerID string) error
	RespondDraw(game *entity.Game, playerID string, accept bool) error
	ExpireDrawOffer(game *entity.Game) bool
	PauseTurn(game *entity.Game)
	ResumeTurn(game *entity.Game)
}

type resultRecorder interface {
	RecordResult(ctx context.Context, userID string, outcome entity.Outcome) error
}

type RoomPolicy struct {
	EmptyGrace  time.Duration
	InactiveTTL time.Duration
}

// GameManager runs every game command on the queue of the room it belongs to
// and pushes the resulting state to the room members.
type GameManager struct {
	logger *slog.Logger
	now    func() time.Time

	rooms      *RoomManager
	engine     gameEngine
	reconnects *ReconnectionManager
	results    resultRecorder
	events     broadcaster
	policy     RoomPolicy
}

func NewGameManager(
	logger *slog.Logger,
	rooms *RoomManager,
	engine gameEngine,
	reconnects *ReconnectionManager,
	results resultRecorder,
	notifier Notifier,
	policy RoomPolicy,
	now func() time.Time,
) *GameManager {
	if now == nil {
		now = time.Now
	}

	manager := &GameManager{
		logger:     logger.With("component", "game_manager"),
		now:        now,
		rooms:      rooms,
		engine:     engine,
		reconnects: reconnects,
		results:    results,
		events:     broadcaster{notifier: notifier},
		policy:     policy,
	}

	rooms.SetPanicHandler(manager.roomPanicked)

	return manager
}

func (that *GameManager) CreateRoom(ctx context.Context, host entity.Member, roomID string) (entity.RoomInfo, error) {
	info, err := that.rooms.CreateRoom(ctx, host, roomID)
	if err != nil {
		return entity.RoomInfo{}, fmt.Errorf("failed to create room: %w", err)
	}

	return info, nil
}

func (that *GameManager) JoinRoom(ctx context.Context, user entity.Member, roomID string) error {
	if err := that.rooms.JoinRoom(ctx, user, roomID); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return nil
}

// LeaveRoom - leaving a running game forfeits it.
func (that *GameManager) LeaveRoom(ctx context.Context, userID string) error {
	roomID, err := that.roomOf(userID)
	if err != nil {
		return err
	}

	return that.rooms.Execute(ctx, roomID, func(room *entity.Room) error {
		if !room.IsMember(userID) {
			return apperror.ErrNotRoomMember
		}

		that.reconnects.Forget(userID)
		that.depart(room, userID)

		return nil
	})
}

func (that *GameManager) SetReady(ctx context.Context, userID string, ready bool) error {
	roomID, err := that.roomOf(userID)
	if err != nil {
		return err
	}

	return that.rooms.SetReady(ctx, userID, roomID, ready)
}

func (that *GameManager) ListAvailableRooms() []entity.RoomInfo {
	return that.rooms.ListAvailableRooms()
}

// StartGame - only the host starts, with a ready guest.
func (that *GameManager) StartGame(ctx context.Context, userID string) error {
	log := that.logger.With("method", "StartGame", "userID", userID)

	roomID, err := that.roomOf(userID)
	if err != nil {
		return err
	}

	return that.rooms.Execute(ctx, roomID, func(room *entity.Room) error {
		if room.HostID != userID {
			return apperror.ErrNotHost
		}

		if room.HasOngoingGame() {
			return apperror.ErrGameInProgress
		}

		guest, ok := room.Guest()
		if !ok || len(room.Members) < entity.PlayersPerGame {
			return apperror.ErrNotEnoughPlayers
		}

		if !room.Ready[guest.ID] {
			return apperror.ErrPlayersNotReady
		}

		players := make([]*entity.Player, 0, len(room.Members))
		for _, member := range room.Members {
			players = append(players, entity.NewPlayer(member.ID, member.Name))
		}

		game := entity.NewGame(room.ID)
		if err := that.engine.Start(game, players); err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}

		room.Game = game
		room.Started = true
		room.Touch(that.now())

		log.Info("game started", "roomID", room.ID, "firstPlayer", game.ActivePlayer().ID)
		that.events.publish(room, Event{Type: EventGameStarted, PlayerID: game.ActivePlayer().ID})

		return nil
	})
}

func (that *GameManager) MakeMove(ctx context.Context, userID string, placements []scrabble.Placement) (*scrabble.MoveResult, error) {
	var result *scrabble.MoveResult

	err := that.inGame(ctx, userID, func(room *entity.Room, game *entity.Game) error {
		moveResult, err := that.engine.ApplyMove(game, userID, placements)
		if err != nil {
			return err
		}

		result = moveResult
		room.Touch(that.now())

		that.events.publish(room, Event{
			Type:     EventMove,
			PlayerID: userID,
			Words:    moveResult.Words,
			Score:    moveResult.Score,
			Bingo:    moveResult.Bingo,
		})
		that.finishIfOver(room)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (that *GameManager) SkipTurn(ctx context.Context, userID string) error {
	return that.inGame(ctx, userID, func(room *entity.Room, game *entity.Game) error {
		if err := that.engine.SkipTurn(game, userID); err != nil {
			return err
		}

		room.Touch(that.now())
		that.events.publish(room, Event{Type: EventSkip, PlayerID: userID})
		that.finishIfOver(room)

		return nil
	})
}

// ClaimTimeout - a client reports that the active turn ran out.
func (that *GameManager) ClaimTimeout(ctx context.Context, userID string) error {
	return that.inGame(ctx, userID, func(room *entity.Room, game *entity.Game) error {
		return that.timeoutTurn(room, game)
	})
}

func (that *GameManager) Resign(ctx context.Context, userID string) error {
	return that.inGame(ctx, userID, func(room *entity.Room, game *entity.Game) error {
		if err := that.engine.Resign(game, userID); err != nil {
			return err
		}

		room.Touch(that.now())
		that.finishIfOver(room)

		return nil
	})
}

func (that *GameManager) OfferDraw(ctx context.Context, userID string) error {
	return that.inGame(ctx, userID, func(room *entity.Room, game *entity.Game) error {
		if err := that.engine.OfferDraw(game, userID); err != nil {
			return err
		}

		room.Touch(that.now())
		that.events.publish(room, Event{Type: EventDrawOffered, PlayerID: userID})

		return nil
	})
}

func (that *GameManager) RespondDraw(ctx context.Context, userID string, accept bool) error {
	return that.inGame(ctx, userID, func(room *entity.Room, game *entity.Game) error {
		err := that.engine.RespondDraw(game, userID, accept)
		if err != nil {
			if errors.Is(err, apperror.ErrDrawOfferExpired) {
				that.events.publish(room, Event{Type: EventDrawExpired})
			}

			return err
		}

		room.Touch(that.now())

		if !accept {
			that.events.publish(room, Event{Type: EventDrawRejected, PlayerID: userID})
			return nil
		}

		that.finishIfOver(room)

		return nil
	})
}

// PreviewTiles - relays tentative placements to the opponent. Game state is not touched.
func (that *GameManager) PreviewTiles(ctx context.Context, userID string, placements []scrabble.Placement) error {
	return that.inGame(ctx, userID, func(room *entity.Room, game *entity.Game) error {
		if err := game.ConfirmOngoingState(); err != nil {
			return err
		}

		that.events.preview(room, userID, placements)

		return nil
	})
}

// State - the user's current view of their room.
func (that *GameManager) State(ctx context.Context, userID string) (entity.RoomState, error) {
	roomID, err := that.roomOf(userID)
	if err != nil {
		return entity.RoomState{}, err
	}

	var state entity.RoomState
	err = that.rooms.Execute(ctx, roomID, func(room *entity.Room) error {
		state = room.State(userID)
		return nil
	})

	return state, err
}

func (that *GameManager) inGame(ctx context.Context, userID string, fn func(room *entity.Room, game *entity.Game) error) error {
	roomID, err := that.roomOf(userID)
	if err != nil {
		return err
	}

	return that.rooms.Execute(ctx, roomID, func(room *entity.Room) error {
		if !room.IsMember(userID) {
			return apperror.ErrNotRoomMember
		}

		if room.Game == nil {
			return apperror.ErrGameIsNotStarted
		}

		// a dropped player stays seated but may not act until RECONNECT
		if player, ok := room.Game.PlayerByID(userID); ok && !player.Connected && room.HasOngoingGame() {
			return apperror.ErrReconnectRequired
		}

		return fn(room, room.Game)
	})
}

func (that *GameManager) timeoutTurn(room *entity.Room, game *entity.Game) error {
	loserID, err := that.engine.TimeoutTurn(game)
	if err != nil {
		return err
	}

	that.logger.Info("turn timed out", "roomID", room.ID, "userID", loserID)
	that.events.publish(room, Event{Type: EventTimeout, PlayerID: loserID})
	that.finishIfOver(room)

	return nil
}

// finishIfOver - wraps up a game that has just ended.
func (that *GameManager) finishIfOver(room *entity.Room) {
	game := room.Game
	if game == nil || !game.IsFinished() || !room.Started {
		return
	}

	room.Started = false
	clear(room.Ready)

	that.logger.Info("game over", "roomID", room.ID, "reason", game.EndReason, "winner", game.WinnerID)
	that.recordResults(game)
	that.events.publish(room, gameOverEvent(game))
}

func (that *GameManager) recordResults(game *entity.Game) {
	if that.results == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), resultTimeout)
	defer cancel()

	for _, player := range game.Players {
		if err := that.results.RecordResult(ctx, player.ID, game.Outcome(player.ID)); err != nil {
			that.logger.Error("failed to record result", "userID", player.ID, "error", err)
		}
	}
}

// depart - the user is gone for good. A running game is forfeited.
func (that *GameManager) depart(room *entity.Room, userID string) {
	if room.HasOngoingGame() {
		if _, ok := room.Game.PlayerByID(userID); ok {
			if err := that.engine.Forfeit(room.Game, userID); err != nil {
				that.logger.Error("failed to forfeit game", "roomID", room.ID, "userID", userID, "error", err)
			}

			that.finishIfOver(room)
		}
	}

	that.rooms.removeMember(room, userID)
	that.events.publish(room, Event{Type: EventPlayerLeft, PlayerID: userID})
}

func (that *GameManager) roomPanicked(roomID string, members []string) {
	for _, id := range members {
		that.reconnects.Forget(id)
	}

	that.events.fail(members, fmt.Errorf("%w: %s", apperror.ErrRoomClosed, roomID))
}

func (that *GameManager) roomOf(userID string) (string, error) {
	roomID, ok := that.rooms.RoomOf(userID)
	if !ok {
		return "", apperror.ErrNotRoomMember
	}

	return roomID, nil
}
