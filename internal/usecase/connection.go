package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

// Disconnect - the user's connection dropped. Players of a running game keep
// their slot for the reconnect window; everyone else simply leaves the room.
func (that *GameManager) Disconnect(ctx context.Context, userID string) error {
	log := that.logger.With("method", "Disconnect", "userID", userID)

	roomID, ok := that.rooms.RoomOf(userID)
	if !ok {
		return nil
	}

	return that.rooms.Execute(ctx, roomID, func(room *entity.Room) error {
		if !room.IsMember(userID) {
			return nil
		}

		player, isPlayer := that.player(room, userID)
		if !room.HasOngoingGame() || !isPlayer {
			that.depart(room, userID)
			return nil
		}

		if !player.Connected {
			return nil
		}

		player.Connected = false
		if room.Game.IsActive(userID) {
			that.engine.PauseTurn(room.Game)
		}

		that.reconnects.Track(userID, room.ID)
		room.Touch(that.now())

		log.Info("player disconnected, waiting for reconnect", "roomID", room.ID)
		that.events.publish(room, Event{Type: EventPlayerDisconnected, PlayerID: userID})

		return nil
	})
}

// Reconnect - puts a disconnected player back into their game. A late
// reconnect counts as leaving: the game is forfeited and the slot is freed.
func (that *GameManager) Reconnect(ctx context.Context, userID, roomID string) (entity.RoomState, error) {
	log := that.logger.With("method", "Reconnect", "userID", userID)

	if roomID == "" {
		if pending, ok := that.reconnects.Pending(userID); ok {
			roomID = pending.RoomID
		} else if current, ok := that.rooms.RoomOf(userID); ok {
			roomID = current
		} else {
			return entity.RoomState{}, apperror.ErrNoPendingReconnect
		}
	}

	var state entity.RoomState
	err := that.rooms.Execute(ctx, roomID, func(room *entity.Room) error {
		_, err := that.reconnects.Take(userID, room.ID)

		switch {
		case errors.Is(err, apperror.ErrReconnectWindowExpired):
			log.Info("reconnect window expired", "roomID", room.ID)
			if room.IsMember(userID) {
				that.depart(room, userID)
			}

			return err
		case errors.Is(err, apperror.ErrNoPendingReconnect):
			if !room.IsMember(userID) {
				return err
			}

			// the entry was already expired by the scheduler and the forfeit is queued
			if player, ok := that.player(room, userID); ok && !player.Connected && room.HasOngoingGame() {
				return apperror.ErrReconnectWindowExpired
			}

			// still seated, the client only needs the state again
			state = room.State(userID)
			that.events.state(room)

			return nil
		case err != nil:
			return err
		}

		if player, ok := that.player(room, userID); ok {
			player.Connected = true
			if room.Game.IsActive(userID) {
				that.engine.ResumeTurn(room.Game)
			}
		}

		room.Touch(that.now())
		state = room.State(userID)

		log.Info("player reconnected", "roomID", room.ID)
		that.events.publish(room, Event{Type: EventPlayerReconnected, PlayerID: userID})

		return nil
	})
	if err != nil {
		return entity.RoomState{}, fmt.Errorf("failed to reconnect: %w", err)
	}

	return state, nil
}

func (that *GameManager) player(room *entity.Room, userID string) (*entity.Player, bool) {
	if room.Game == nil {
		return nil, false
	}

	return room.Game.PlayerByID(userID)
}
