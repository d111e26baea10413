package tcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

var ErrUnknownType = errors.New("unknown message type")

// dispatch - one arm per message type. Command errors go back to the sender only.
func (that *Server) dispatch(ctx context.Context, session *Session, message Message) {
	log := session.logger.With("method", "dispatch", "type", message.Type)

	var err error

	switch message.Type {
	case TypeHeartbeat:
		that.reply(session, TypeHeartbeat, nil)
		return
	case TypeAuth, TypeRegister:
		that.handleAuth(ctx, session, message)
		return
	}

	userID := session.UserID()
	if userID == "" {
		that.replyError(session, message.Type, apperror.ErrNotAuthenticated)
		return
	}

	switch message.Type {
	case TypeCreateRoom:
		err = that.handleCreateRoom(ctx, session, message)
	case TypeJoinRoom:
		err = that.handleJoinRoom(ctx, session, message)
	case TypeLeaveRoom:
		err = that.games.LeaveRoom(ctx, userID)
	case TypePlayerReady:
		err = that.handleReady(ctx, session, message)
	case TypeStartGame:
		err = that.games.StartGame(ctx, userID)
	case TypeGetRooms:
		that.reply(session, TypeRoomList, RoomList{Rooms: that.games.ListAvailableRooms()})
	case TypeReconnect:
		err = that.handleReconnect(ctx, session, message)
	case TypeSyncState:
		err = that.handleSyncState(ctx, session)
	case TypeMakeMove, TypeTurnCommit:
		err = that.handleMove(ctx, session, message)
	case TypeTilePreview:
		err = that.handlePreview(ctx, session, message)
	case TypeSkipTurn:
		err = that.games.SkipTurn(ctx, userID)
	case TypeSurrender:
		err = that.games.Resign(ctx, userID)
	case TypeOfferDraw:
		err = that.games.OfferDraw(ctx, userID)
	case TypeDrawResponse:
		err = that.handleDrawResponse(ctx, session, message)
	case TypeTimeOut:
		err = that.games.ClaimTimeout(ctx, userID)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownType, message.Type)
	}

	if err != nil {
		log.Info("command rejected", "userID", userID, "error", err)
		that.replyError(session, message.Type, err)
	}
}

func (that *Server) handleAuth(ctx context.Context, session *Session, message Message) {
	log := session.logger.With("method", "handleAuth")

	user, err := that.authenticate(ctx, session, message)
	if err != nil {
		if !isAuthError(err) && !errors.Is(err, ErrMalformedMessage) {
			log.Error("authentication failed", "error", err)
		}

		that.reply(session, TypeAuthError, errorPayload(err, message.Type))

		return
	}

	token, err := that.tokens.GenerateToken(user)
	if err != nil {
		log.Error("failed to issue token", "error", err)
		that.reply(session, TypeAuthError, errorPayload(err, message.Type))

		return
	}

	session.Authenticate(user.ID, user.Username)
	if previous := that.registry.Bind(user.ID, session); previous != nil {
		log.Info("replacing previous connection", "userID", user.ID, "previousSessionID", previous.ID)
		previous.Close()
	}

	log.Info("user authenticated", "userID", user.ID)

	that.reply(session, TypeAuthSuccess, AuthSuccess{
		UserID:      user.ID,
		Username:    user.Username,
		Token:       token,
		Wins:        user.Wins,
		Losses:      user.Losses,
		Draws:       user.Draws,
		GamesPlayed: user.GamesPlayed,
	})
}

func (that *Server) authenticate(ctx context.Context, session *Session, message Message) (*entity.User, error) {
	if session.UserID() != "" {
		return nil, apperror.ErrAlreadyAuthenticated
	}

	var request AuthRequest
	if err := message.Bind(&request); err != nil {
		return nil, err
	}

	if message.Type == TypeRegister {
		return that.users.Register(ctx, request.Username, request.Password)
	}

	if request.Token != "" {
		userID, err := that.tokens.ParseToken(request.Token)
		if err != nil {
			return nil, err
		}

		user, err := that.users.GetUserByID(ctx, userID)
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.ErrInvalidToken
		}

		return user, err
	}

	return that.users.Authenticate(ctx, request.Username, request.Password)
}

func (that *Server) handleCreateRoom(ctx context.Context, session *Session, message Message) error {
	var request RoomRequest
	if message.Payload != "" {
		if err := message.Bind(&request); err != nil {
			return err
		}
	}

	_, err := that.games.CreateRoom(ctx, member(session), request.RoomID)

	return err
}

func (that *Server) handleJoinRoom(ctx context.Context, session *Session, message Message) error {
	var request RoomRequest
	if err := message.Bind(&request); err != nil {
		return err
	}

	return that.games.JoinRoom(ctx, member(session), request.RoomID)
}

func (that *Server) handleReady(ctx context.Context, session *Session, message Message) error {
	request := ReadyRequest{Ready: true}
	if message.Payload != "" {
		if err := message.Bind(&request); err != nil {
			return err
		}
	}

	return that.games.SetReady(ctx, session.UserID(), request.Ready)
}

func (that *Server) handleReconnect(ctx context.Context, session *Session, message Message) error {
	var request RoomRequest
	if message.Payload != "" {
		if err := message.Bind(&request); err != nil {
			return err
		}
	}

	state, err := that.games.Reconnect(ctx, session.UserID(), request.RoomID)
	if err != nil {
		return err
	}

	that.reply(session, TypeSyncState, state)

	return nil
}

func (that *Server) handleSyncState(ctx context.Context, session *Session) error {
	state, err := that.games.State(ctx, session.UserID())
	if err != nil {
		return err
	}

	that.reply(session, TypeSyncState, state)

	return nil
}

func (that *Server) handleMove(ctx context.Context, session *Session, message Message) error {
	var request MoveRequest
	if err := message.Bind(&request); err != nil {
		return err
	}

	placements, err := toPlacedTiles(request.Placements)
	if err != nil {
		return err
	}

	_, err = that.games.MakeMove(ctx, session.UserID(), placements)

	return err
}

func (that *Server) handlePreview(ctx context.Context, session *Session, message Message) error {
	var request MoveRequest
	if err := message.Bind(&request); err != nil {
		return err
	}

	placements, err := toPlacedTiles(request.Placements)
	if err != nil {
		return err
	}

	return that.games.PreviewTiles(ctx, session.UserID(), placements)
}

func (that *Server) handleDrawResponse(ctx context.Context, session *Session, message Message) error {
	var request DrawResponse
	if err := message.Bind(&request); err != nil {
		return err
	}

	return that.games.RespondDraw(ctx, session.UserID(), request.Accept)
}

func member(session *Session) entity.Member {
	return entity.Member{ID: session.UserID(), Name: session.Username()}
}
