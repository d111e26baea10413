package apperror

import "errors"

// game errors.
var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameInProgress   = errors.New("game is already in progress")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrBadGeometry      = errors.New("tiles are not placed on a single connected line")
	ErrWordNotFound     = errors.New("word is not in the dictionary")
	ErrTilesNotInRack   = errors.New("tiles are not in the player's rack")
	ErrNotAPlayer       = errors.New("user is not a player of this game")
	ErrNoDrawOffer      = errors.New("there is no pending draw offer")
	ErrDrawOfferExists  = errors.New("a draw offer is already pending")
	ErrDrawOfferExpired = errors.New("draw offer has expired")
	ErrOwnDrawOffer     = errors.New("cannot respond to your own draw offer")
	ErrTurnNotExpired   = errors.New("turn time has not run out yet")
)

// room errors.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomFull          = errors.New("room is full")
	ErrRoomClosed        = errors.New("room is closed")
	ErrNotRoomMember     = errors.New("user is not a member of the room")
	ErrAlreadyInRoom     = errors.New("user is already in another room")
	ErrNotHost           = errors.New("only the host can do this")
	ErrPlayersNotReady   = errors.New("players are not ready")
	ErrNotEnoughPlayers  = errors.New("two players are required")
)

// reconnection errors.
var (
	ErrReconnectWindowExpired = errors.New("reconnect window expired")
	ErrNoPendingReconnect     = errors.New("no pending reconnect for user")
	ErrReconnectRequired      = errors.New("player is disconnected, reconnect first")
)

// user errors.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidToken         = errors.New("invalid session token")
	ErrNotAuthenticated     = errors.New("authentication required")
	ErrAlreadyAuthenticated = errors.New("connection is already authenticated")
	ErrInvalidUsername      = errors.New("username must be 3 to 24 letters, digits or underscores")
	ErrWeakPassword         = errors.New("password must be at least 6 characters")
)
