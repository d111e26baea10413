package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
	"github.com/rocketscienceinc/scrabble-backend/internal/usecase"
)

const (
	DefaultSendQueueSize = 64
	DefaultWriteTimeout  = 10 * time.Second
	DefaultIdleTimeout   = 5 * time.Minute
)

type gameManager interface {
	CreateRoom(ctx context.Context, host entity.Member, roomID string) (entity.RoomInfo, error)
	JoinRoom(ctx context.Context, user entity.Member, roomID string) error
	LeaveRoom(ctx context.Context, userID string) error
	SetReady(ctx context.Context, userID string, ready bool) error
	ListAvailableRooms() []entity.RoomInfo
	StartGame(ctx context.Context, userID string) error
	MakeMove(ctx context.Context, userID string, placements []scrabble.Placement) (*scrabble.MoveResult, error)
	PreviewTiles(ctx context.Context, userID string, placements []scrabble.Placement) error
	SkipTurn(ctx context.Context, userID string) error
	ClaimTimeout(ctx context.Context, userID string) error
	Resign(ctx context.Context, userID string) error
	OfferDraw(ctx context.Context, userID string) error
	RespondDraw(ctx context.Context, userID string, accept bool) error
	State(ctx context.Context, userID string) (entity.RoomState, error)
	Disconnect(ctx context.Context, userID string) error
	Reconnect(ctx context.Context, userID, roomID string) (entity.RoomState, error)
}

type userService interface {
	Register(ctx context.Context, username, password string) (*entity.User, error)
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
}

type tokenService interface {
	GenerateToken(user *entity.User) (string, error)
	ParseToken(token string) (string, error)
}

type Config struct {
	MaxFrameSize  int
	SendQueueSize int
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
}

func (that Config) withDefaults() Config {
	if that.MaxFrameSize <= 0 {
		that.MaxFrameSize = DefaultMaxFrameSize
	}

	if that.SendQueueSize <= 0 {
		that.SendQueueSize = DefaultSendQueueSize
	}

	if that.WriteTimeout <= 0 {
		that.WriteTimeout = DefaultWriteTimeout
	}

	if that.IdleTimeout <= 0 {
		that.IdleTimeout = DefaultIdleTimeout
	}

	return that
}

type Server struct {
	logger *slog.Logger
	config Config

	games    gameManager
	users    userService
	tokens   tokenService
	registry *Registry

	mu       sync.Mutex
	listener net.Listener
	sessions map[*Session]struct{}
	wg       sync.WaitGroup
}

func New(logger *slog.Logger, config Config, games gameManager, users userService, tokens tokenService, registry *Registry) *Server {
	return &Server{
		logger:   logger.With("component", "tcp_server"),
		config:   config.withDefaults(),
		games:    games,
		users:    users,
		tokens:   tokens,
		registry: registry,
		sessions: make(map[*Session]struct{}),
	}
}

// Start - listens on port and serves until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return that.Serve(ctx, listener)
}

func (that *Server) Serve(ctx context.Context, listener net.Listener) error {
	log := that.logger.With("method", "Serve", "addr", listener.Addr().String())

	that.mu.Lock()
	that.listener = listener
	that.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = listener.Close()
		that.closeSessions()
	}()

	log.Info("socket server started")

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				that.wg.Wait()
				log.Info("socket server stopped")

				return nil
			}

			log.Error("failed to accept connection", "error", err)

			continue
		}

		that.wg.Add(1)
		go func() {
			defer that.wg.Done()
			that.handleConnection(ctx, conn)
		}()
	}
}

// Addr - the address the server listens on, once started.
func (that *Server) Addr() net.Addr {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.listener == nil {
		return nil
	}

	return that.listener.Addr()
}

func (that *Server) handleConnection(ctx context.Context, conn net.Conn) {
	session := NewSession(that.logger, conn, that.config.SendQueueSize, that.config.MaxFrameSize, that.config.WriteTimeout)
	log := session.logger.With("method", "handleConnection")

	that.track(session, true)
	defer that.track(session, false)

	go session.writeLoop()
	defer session.Close()

	if ctx.Err() != nil {
		return
	}
	defer that.disconnected(ctx, session)

	log.Info("connection established")

	reader := NewFrameReader(conn, that.config.MaxFrameSize)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(that.config.IdleTimeout))

		body, err := reader.ReadFrame()
		if err != nil {
			that.logReadError(log, err)
			return
		}

		session.Touch()

		message, err := DecodeMessage(body)
		if err != nil {
			log.Warn("protocol violation, closing connection", "error", err)
			return
		}

		that.dispatch(ctx, session, message)

		select {
		case <-session.Done():
			return
		default:
		}
	}
}

// disconnected - runs once the connection is gone. A session replaced by a
// newer login does not count as a disconnect.
func (that *Server) disconnected(ctx context.Context, session *Session) {
	userID := session.UserID()
	if userID == "" || !that.registry.Unbind(userID, session) {
		return
	}

	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}

	if err := that.games.Disconnect(ctx, userID); err != nil {
		session.logger.Warn("failed to handle disconnect", "userID", userID, "error", err)
	}
}

func (that *Server) logReadError(log *slog.Logger, err error) {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		log.Info("connection closed")
	case errors.Is(err, os.ErrDeadlineExceeded):
		log.Info("connection idle for too long")
	case errors.Is(err, ErrEmptyFrame), errors.Is(err, ErrFrameTooLarge):
		log.Warn("protocol violation, closing connection", "error", err)
	default:
		log.Warn("connection lost", "error", err)
	}
}

func (that *Server) track(session *Session, add bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if add {
		that.sessions[session] = struct{}{}
		return
	}

	delete(that.sessions, session)
}

func (that *Server) closeSessions() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for session := range that.sessions {
		session.Close()
	}
}

// reply - answers the session that sent a request.
func (that *Server) reply(session *Session, messageType MessageType, payload any) {
	message, err := NewMessage(messageType, payload)
	if err != nil {
		session.logger.Error("failed to build reply", "type", messageType, "error", err)
		return
	}

	session.Send(message)
}

func (that *Server) replyError(session *Session, request MessageType, err error) {
	that.reply(session, TypeError, errorPayload(err, request))
}

var _ usecase.Notifier = (*Registry)(nil)
