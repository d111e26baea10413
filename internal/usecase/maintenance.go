package usecase

import (
	"context"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

// Tick - periodic housekeeping. It only schedules work on room queues and
// never touches room state itself.
func (that *GameManager) Tick(_ context.Context) {
	log := that.logger.With("method", "Tick")

	for _, entry := range that.reconnects.Expired() {
		userID := entry.UserID

		err := that.rooms.Enqueue(entry.RoomID, func(room *entity.Room) {
			if !room.IsMember(userID) {
				return
			}

			if player, ok := that.player(room, userID); ok && player.Connected {
				return
			}

			log.Info("reconnect window expired", "roomID", room.ID, "userID", userID)
			that.depart(room, userID)
		})
		if err != nil {
			log.Debug("room of expired reconnect is gone", "roomID", entry.RoomID, "error", err)
		}
	}

	for _, roomID := range that.rooms.RoomIDs() {
		if err := that.rooms.Enqueue(roomID, that.maintain); err != nil {
			log.Debug("failed to schedule room maintenance", "roomID", roomID, "error", err)
		}
	}
}

// maintain runs on the room's queue.
func (that *GameManager) maintain(room *entity.Room) {
	now := that.now()

	if game := room.Game; room.HasOngoingGame() {
		if that.engine.ExpireDrawOffer(game) {
			that.events.publish(room, Event{Type: EventDrawExpired})
		}

		if that.engine.TurnExpired(game) {
			if err := that.timeoutTurn(room, game); err != nil {
				that.logger.Error("failed to time out turn", "roomID", room.ID, "error", err)
			}
		}

		return
	}

	if room.IsEmpty() && !room.EmptySince.IsZero() && now.Sub(room.EmptySince) >= that.policy.EmptyGrace {
		that.rooms.closeRoom(room, "empty")
		return
	}

	if that.policy.InactiveTTL > 0 && now.Sub(room.LastActivity) >= that.policy.InactiveTTL {
		that.rooms.closeRoom(room, "inactive")
	}
}
