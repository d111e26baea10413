package usecase

import (
	"sync"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
)

const DefaultReconnectWindow = time.Minute

type PendingReconnect struct {
	UserID         string
	RoomID         string
	DisconnectedAt time.Time
}

// ReconnectionManager remembers players that dropped out of a running game.
// Entries are only purged by Take and Expired; there is no timer per user.
type ReconnectionManager struct {
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]PendingReconnect
}

func NewReconnectionManager(window time.Duration, now func() time.Time) *ReconnectionManager {
	if now == nil {
		now = time.Now
	}

	return &ReconnectionManager{
		window:  window,
		now:     now,
		pending: make(map[string]PendingReconnect),
	}
}

// Track - starts the reconnect window for the user.
func (that *ReconnectionManager) Track(userID, roomID string) PendingReconnect {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry := PendingReconnect{UserID: userID, RoomID: roomID, DisconnectedAt: that.now()}
	that.pending[userID] = entry

	return entry
}

// Take - claims the pending slot. The window is inclusive; a late claim
// removes the entry and fails.
func (that *ReconnectionManager) Take(userID, roomID string) (PendingReconnect, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.pending[userID]
	if !ok || (roomID != "" && entry.RoomID != roomID) {
		return PendingReconnect{}, apperror.ErrNoPendingReconnect
	}

	delete(that.pending, userID)

	if that.expired(entry) {
		return entry, apperror.ErrReconnectWindowExpired
	}

	return entry, nil
}

func (that *ReconnectionManager) Pending(userID string) (PendingReconnect, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.pending[userID]

	return entry, ok
}

func (that *ReconnectionManager) Forget(userID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.pending, userID)
}

// Expired - removes and returns every entry whose window has passed.
func (that *ReconnectionManager) Expired() []PendingReconnect {
	that.mu.Lock()
	defer that.mu.Unlock()

	var expired []PendingReconnect
	for userID, entry := range that.pending {
		if that.expired(entry) {
			expired = append(expired, entry)
			delete(that.pending, userID)
		}
	}

	return expired
}

func (that *ReconnectionManager) expired(entry PendingReconnect) bool {
	return that.now().Sub(entry.DisconnectedAt) > that.window
}
