package tcp

import (
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/pkg"
)

// Session is one client connection. Reads happen on the connection's own
// goroutine; writes are queued and flushed by a dedicated writer so a slow
// peer never holds up a room.
type Session struct {
	ID     string
	logger *slog.Logger
	conn   net.Conn

	maxFrameSize int
	writeTimeout time.Duration

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	userID   string
	username string

	lastSeen atomic.Int64
}

func NewSession(logger *slog.Logger, conn net.Conn, queueSize, maxFrameSize int, writeTimeout time.Duration) *Session {
	id := pkg.GenerateSessionID()

	session := &Session{
		ID:           id,
		logger:       logger.With("sessionID", id, "remote", conn.RemoteAddr().String()),
		conn:         conn,
		maxFrameSize: maxFrameSize,
		writeTimeout: writeTimeout,
		out:          make(chan []byte, queueSize),
		done:         make(chan struct{}),
	}
	session.Touch()

	return session
}

// Send - queues the message. A full queue means the peer stopped reading; the
// session is closed instead of blocking the sender.
func (that *Session) Send(message Message) bool {
	frame, err := EncodeMessage(message, that.maxFrameSize)
	if err != nil {
		that.logger.Error("failed to encode message", "type", message.Type, "error", err)
		return false
	}

	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.out <- frame:
		return true
	case <-that.done:
		return false
	default:
		that.logger.Warn("send queue is full, dropping slow client", "type", message.Type)
		that.Close()

		return false
	}
}

// writeLoop - flushes queued frames until the session closes.
func (that *Session) writeLoop() {
	for {
		select {
		case <-that.done:
			return
		case frame := <-that.out:
			if that.writeTimeout > 0 {
				_ = that.conn.SetWriteDeadline(time.Now().Add(that.writeTimeout))
			}

			// net.Conn writes the whole frame or fails
			if _, err := that.conn.Write(frame); err != nil {
				that.logger.Warn("failed to write frame", "error", err)
				that.Close()

				return
			}
		}
	}
}

func (that *Session) Close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.conn.Close()
	})
}

func (that *Session) Done() <-chan struct{} {
	return that.done
}

func (that *Session) Authenticate(userID, username string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.userID = userID
	that.username = username
}

func (that *Session) UserID() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.userID
}

func (that *Session) Username() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.username
}

func (that *Session) Touch() {
	that.lastSeen.Store(time.Now().UnixNano())
}

func (that *Session) LastSeen() time.Time {
	return time.Unix(0, that.lastSeen.Load())
}
