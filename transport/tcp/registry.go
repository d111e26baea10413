package tcp

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/scrabble-backend/internal/usecase"
)

// Registry maps authenticated users to their live session and delivers room
// notifications to them.
type Registry struct {
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger.With("component", "registry"),
		sessions: make(map[string]*Session),
	}
}

// Bind - makes session the user's live connection and returns the one it replaced.
func (that *Registry) Bind(userID string, session *Session) *Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	previous := that.sessions[userID]
	that.sessions[userID] = session

	if previous == session {
		return nil
	}

	return previous
}

// Unbind - forgets the user only if session is still the live one.
func (that *Registry) Unbind(userID string, session *Session) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.sessions[userID] != session {
		return false
	}

	delete(that.sessions, userID)

	return true
}

func (that *Registry) Session(userID string) (*Session, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[userID]

	return session, ok
}

func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

// Notify - never blocks; users without a live session miss the notification
// and catch up with the state on reconnect.
func (that *Registry) Notify(userID string, notification usecase.Notification) {
	session, ok := that.Session(userID)
	if !ok {
		return
	}

	message, err := notificationMessage(notification)
	if err != nil {
		that.logger.Error("failed to build notification", "userID", userID, "error", err)
		return
	}

	session.Send(message)
}
