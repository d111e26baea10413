package tcp

import (
	"errors"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{apperror.ErrNotYourTurn, "not_your_turn"},
	{apperror.ErrBadGeometry, "bad_geometry"},
	{apperror.ErrCellOccupied, "cell_occupied"},
	{apperror.ErrWordNotFound, "word_not_found"},
	{apperror.ErrTilesNotInRack, "tiles_not_in_rack"},
	{apperror.ErrRoomFull, "room_full"},
	{apperror.ErrGameInProgress, "game_in_progress"},
	{apperror.ErrRoomNotFound, "room_not_found"},
	{apperror.ErrRoomAlreadyExists, "room_exists"},
	{apperror.ErrRoomClosed, "room_closed"},
	{apperror.ErrNotRoomMember, "not_room_member"},
	{apperror.ErrAlreadyInRoom, "already_in_room"},
	{apperror.ErrNotHost, "not_host"},
	{apperror.ErrPlayersNotReady, "players_not_ready"},
	{apperror.ErrNotEnoughPlayers, "not_enough_players"},
	{apperror.ErrGameIsNotStarted, "game_not_started"},
	{apperror.ErrGameFinished, "game_finished"},
	{apperror.ErrNotAPlayer, "not_a_player"},
	{apperror.ErrNoDrawOffer, "no_draw_offer"},
	{apperror.ErrDrawOfferExists, "draw_offer_exists"},
	{apperror.ErrDrawOfferExpired, "draw_offer_expired"},
	{apperror.ErrOwnDrawOffer, "own_draw_offer"},
	{apperror.ErrTurnNotExpired, "turn_not_expired"},
	{apperror.ErrReconnectWindowExpired, "reconnect_window_expired"},
	{apperror.ErrNoPendingReconnect, "no_pending_reconnect"},
	{apperror.ErrReconnectRequired, "reconnect_required"},
	{apperror.ErrInvalidCredentials, "invalid_credentials"},
	{apperror.ErrInvalidToken, "invalid_token"},
	{apperror.ErrUserAlreadyExists, "user_exists"},
	{apperror.ErrUserNotFound, "user_not_found"},
	{apperror.ErrInvalidUsername, "invalid_username"},
	{apperror.ErrWeakPassword, "weak_password"},
	{apperror.ErrNotAuthenticated, "not_authenticated"},
	{apperror.ErrAlreadyAuthenticated, "already_authenticated"},
	{ErrMalformedMessage, "malformed_message"},
	{ErrUnknownType, "unknown_type"},
}

// errorCode - a stable code for the client. Anything unexpected is "internal".
func errorCode(err error) string {
	for _, known := range errorCodes {
		if errors.Is(err, known.err) {
			return known.code
		}
	}

	return "internal"
}

func errorPayload(err error, request MessageType) ErrorPayload {
	code := errorCode(err)

	message := err.Error()
	if code == "internal" {
		message = "internal server error"
	}

	return ErrorPayload{
		Code:    code,
		Message: message,
		Request: request,
	}
}

// isAuthError - failures answered with AUTH_ERROR; the client may retry.
func isAuthError(err error) bool {
	return errors.Is(err, apperror.ErrInvalidCredentials) ||
		errors.Is(err, apperror.ErrInvalidToken) ||
		errors.Is(err, apperror.ErrUserAlreadyExists) ||
		errors.Is(err, apperror.ErrUserNotFound) ||
		errors.Is(err, apperror.ErrInvalidUsername) ||
		errors.Is(err, apperror.ErrWeakPassword) ||
		errors.Is(err, apperror.ErrAlreadyAuthenticated)
}
