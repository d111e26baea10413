package usecase

import (
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

// Event types sent to room members.
const (
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventPlayerReady        = "player_ready"
	EventGameStarted        = "game_started"
	EventMove               = "move"
	EventSkip               = "skip"
	EventTimeout            = "timeout"
	EventDrawOffered        = "draw_offered"
	EventDrawRejected       = "draw_rejected"
	EventDrawExpired        = "draw_expired"
	EventPlayerDisconnected = "player_disconnected"
	EventPlayerReconnected  = "player_reconnected"
	EventGameOver           = "game_over"
	EventRoomClosed         = "room_closed"
)

type Event struct {
	Type     string   `json:"type"`
	RoomID   string   `json:"room_id"`
	PlayerID string   `json:"player_id,omitempty"`
	Words    []string `json:"words,omitempty"`
	Score    int      `json:"score,omitempty"`
	Bingo    bool     `json:"bingo,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	WinnerID string   `json:"winner_id,omitempty"`
}

type NotificationKind int

const (
	KindState NotificationKind = iota
	KindEvent
	KindPreview
	KindError
)

// Notification is pushed to a single user. Exactly one of the payload fields
// is set, matching Kind.
type Notification struct {
	Kind     NotificationKind
	SenderID string

	State   *entity.RoomState
	Event   *Event
	Preview []entity.PlacedTile
	Err     error
}

// Notifier delivers notifications to connected users. It must not block.
type Notifier interface {
	Notify(userID string, notification Notification)
}

type broadcaster struct {
	notifier Notifier
}

// state - sends every member its own view of the room.
func (that broadcaster) state(room *entity.Room) {
	for _, member := range room.Members {
		state := room.State(member.ID)
		that.notifier.Notify(member.ID, Notification{Kind: KindState, State: &state})
	}
}

func (that broadcaster) event(room *entity.Room, event Event) {
	event.RoomID = room.ID
	for _, member := range room.Members {
		ev := event
		that.notifier.Notify(member.ID, Notification{Kind: KindEvent, Event: &ev})
	}
}

// publish - the state first, then what happened.
func (that broadcaster) publish(room *entity.Room, event Event) {
	that.state(room)
	that.event(room, event)
}

func (that broadcaster) preview(room *entity.Room, senderID string, placements []entity.PlacedTile) {
	for _, member := range room.Members {
		if member.ID == senderID {
			continue
		}

		that.notifier.Notify(member.ID, Notification{Kind: KindPreview, SenderID: senderID, Preview: placements})
	}
}

func (that broadcaster) fail(userIDs []string, err error) {
	for _, id := range userIDs {
		that.notifier.Notify(id, Notification{Kind: KindError, Err: err})
	}
}

func gameOverEvent(game *entity.Game) Event {
	return Event{
		Type:     EventGameOver,
		Reason:   game.EndReason,
		WinnerID: game.WinnerID,
	}
}
