package tcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/usecase"
)

type MessageType string

// session and lobby.
const (
	TypeAuth        MessageType = "AUTH"
	TypeRegister    MessageType = "REGISTER"
	TypeAuthSuccess MessageType = "AUTH_SUCCESS"
	TypeAuthError   MessageType = "AUTH_ERROR"
	TypeHeartbeat   MessageType = "HEARTBEAT"
	TypeCreateRoom  MessageType = "CREATE_ROOM"
	TypeJoinRoom    MessageType = "JOIN_ROOM"
	TypeLeaveRoom   MessageType = "LEAVE_ROOM"
	TypeStartGame   MessageType = "START_GAME"
	TypePlayerReady MessageType = "PLAYER_READY"
	TypeReconnect   MessageType = "RECONNECT"
	TypeGetRooms    MessageType = "GET_ROOMS"
	TypeRoomList    MessageType = "ROOM_LIST"
)

// game.
const (
	TypeMakeMove     MessageType = "MAKE_MOVE"
	TypeTurnCommit   MessageType = "TURN_COMMIT"
	TypeTilePreview  MessageType = "TILE_PREVIEW"
	TypeSkipTurn     MessageType = "SKIP_TURN"
	TypeSurrender    MessageType = "SURRENDER"
	TypeOfferDraw    MessageType = "OFFER_DRAW"
	TypeDrawResponse MessageType = "DRAW_RESPONSE"
	TypeTimeOut      MessageType = "TIME_OUT"
	TypeSyncState    MessageType = "SYNC_STATE"
	TypeGameEvent    MessageType = "GAME_EVENT"
	TypeError        MessageType = "ERROR"
)

var ErrMalformedMessage = errors.New("malformed message")

// Message is the body of one frame. Payload holds a JSON document of its own,
// specific to Type.
type Message struct {
	Type     MessageType `json:"type"`
	Payload  string      `json:"payload"`
	SenderID *string     `json:"senderId"`
}

func NewMessage(messageType MessageType, payload any) (Message, error) {
	message := Message{Type: messageType}

	if payload == nil {
		return message, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", messageType, err)
	}

	message.Payload = string(body)

	return message, nil
}

// Bind - decodes the payload into v.
func (that Message) Bind(v any) error {
	if that.Payload == "" {
		return fmt.Errorf("%w: %s has no payload", ErrMalformedMessage, that.Type)
	}

	if err := json.Unmarshal([]byte(that.Payload), v); err != nil {
		return fmt.Errorf("%w: %s payload: %w", ErrMalformedMessage, that.Type, err)
	}

	return nil
}

func DecodeMessage(body []byte) (Message, error) {
	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	if message.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}

	return message, nil
}

// EncodeMessage - the message as a complete frame.
func EncodeMessage(message Message, maxSize int) ([]byte, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return Encode(body, maxSize)
}

type AuthRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

type AuthSuccess struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	Token       string `json:"token"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
	GamesPlayed int    `json:"gamesPlayed"`
}

type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Request MessageType `json:"request,omitempty"`
}

type RoomRequest struct {
	RoomID string `json:"roomId"`
}

type ReadyRequest struct {
	Ready bool `json:"ready"`
}

type DrawResponse struct {
	Accept bool `json:"accept"`
}

type RoomList struct {
	Rooms []entity.RoomInfo `json:"rooms"`
}

type Placement struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Letter string `json:"letter"`
	Blank  bool   `json:"blank,omitempty"`
}

type MoveRequest struct {
	Placements []Placement `json:"placements"`
}

type MoveResult struct {
	Words []string `json:"words"`
	Score int      `json:"score"`
	Bingo bool     `json:"bingo,omitempty"`
}

// toPlacedTiles - a blank carries the letter it stands for.
func toPlacedTiles(placements []Placement) ([]entity.PlacedTile, error) {
	tiles := make([]entity.PlacedTile, 0, len(placements))

	for _, placement := range placements {
		letter, err := entity.ParseLetter(placement.Letter)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
		}

		tile := entity.LetterTile(letter)
		if placement.Blank {
			tile = entity.Tile{Letter: letter, Blank: true}
		}

		tiles = append(tiles, entity.PlacedTile{
			Position: entity.Position{X: placement.X, Y: placement.Y},
			Tile:     tile,
		})
	}

	return tiles, nil
}

func fromPlacedTiles(tiles []entity.PlacedTile) []Placement {
	placements := make([]Placement, 0, len(tiles))
	for _, tile := range tiles {
		placements = append(placements, Placement{
			X:      tile.X,
			Y:      tile.Y,
			Letter: string(tile.Letter),
			Blank:  tile.Blank,
		})
	}

	return placements
}

// notificationMessage - what a room notification looks like on the wire.
func notificationMessage(notification usecase.Notification) (Message, error) {
	switch notification.Kind {
	case usecase.KindState:
		return NewMessage(TypeSyncState, notification.State)
	case usecase.KindEvent:
		return NewMessage(TypeGameEvent, notification.Event)
	case usecase.KindPreview:
		message, err := NewMessage(TypeTilePreview, MoveRequest{Placements: fromPlacedTiles(notification.Preview)})
		if err != nil {
			return Message{}, err
		}

		sender := notification.SenderID
		message.SenderID = &sender

		return message, nil
	case usecase.KindError:
		return NewMessage(TypeError, errorPayload(notification.Err, ""))
	default:
		return Message{}, fmt.Errorf("unknown notification kind %d", notification.Kind)
	}
}
