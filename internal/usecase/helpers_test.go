package usecase

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
)

var (
	alice = entity.Member{ID: "alice", Name: "Alice"}
	bob   = entity.Member{ID: "bob", Name: "Bob"}
	carol = entity.Member{ID: "carol", Name: "Carol"}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (that *fakeClock) Now() time.Time {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.now
}

func (that *fakeClock) Advance(d time.Duration) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.now = that.now.Add(d)
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications map[string][]Notification
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{notifications: make(map[string][]Notification)}
}

func (that *recordingNotifier) Notify(userID string, notification Notification) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.notifications[userID] = append(that.notifications[userID], notification)
}

func (that *recordingNotifier) count(userID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.notifications[userID])
}

// events - the event types the user received, in order.
func (that *recordingNotifier) events(userID string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	var types []string
	for _, n := range that.notifications[userID] {
		if n.Kind == KindEvent {
			types = append(types, n.Event.Type)
		}
	}

	return types
}

func (that *recordingNotifier) lastEvent(userID string) *Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	list := that.notifications[userID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Kind == KindEvent {
			return list[i].Event
		}
	}

	return nil
}

func (that *recordingNotifier) ofKind(userID string, kind NotificationKind) []Notification {
	that.mu.Lock()
	defer that.mu.Unlock()

	var found []Notification
	for _, n := range that.notifications[userID] {
		if n.Kind == kind {
			found = append(found, n)
		}
	}

	return found
}

type mockResultRecorder struct {
	mock.Mock
}

func (that *mockResultRecorder) RecordResult(ctx context.Context, userID string, outcome entity.Outcome) error {
	args := that.Called(ctx, userID, outcome)
	return args.Error(0)
}

type anyWord struct{}

func (anyWord) IsValidWord(string) bool {
	return true
}

type testEnv struct {
	ctx      context.Context
	clock    *fakeClock
	notifier *recordingNotifier
	recorder *mockResultRecorder
	rooms    *RoomManager
	manager  *GameManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := newFakeClock()
	notifier := newRecordingNotifier()
	recorder := &mockResultRecorder{}

	rooms := NewRoomManager(logger, notifier, 16, clock.Now)
	engine := scrabble.NewEngine(anyWord{}, scrabble.DefaultRules(), rand.New(rand.NewPCG(7, 7)), clock.Now)
	reconnects := NewReconnectionManager(DefaultReconnectWindow, clock.Now)
	policy := RoomPolicy{EmptyGrace: 2 * time.Minute, InactiveTTL: 30 * time.Minute}

	manager := NewGameManager(logger, rooms, engine, reconnects, recorder, notifier, policy, clock.Now)

	return &testEnv{
		ctx:      context.Background(),
		clock:    clock,
		notifier: notifier,
		recorder: recorder,
		rooms:    rooms,
		manager:  manager,
	}
}

// startGame - alice hosts room R1, bob joins and readies, the game starts.
func (that *testEnv) startGame(t *testing.T) {
	t.Helper()

	_, err := that.manager.CreateRoom(that.ctx, alice, "R1")
	require.NoError(t, err)
	require.NoError(t, that.manager.JoinRoom(that.ctx, bob, "R1"))
	require.NoError(t, that.manager.SetReady(that.ctx, bob.ID, true))
	require.NoError(t, that.manager.StartGame(that.ctx, alice.ID))
}

// inRoom - runs fn on the room's queue and waits for it.
func (that *testEnv) inRoom(t *testing.T, roomID string, fn func(room *entity.Room)) {
	t.Helper()

	require.NoError(t, that.rooms.Execute(that.ctx, roomID, func(room *entity.Room) error {
		fn(room)
		return nil
	}))
}

// players - the active player first.
func (that *testEnv) players(t *testing.T) (string, string) {
	t.Helper()

	var active, waiting string
	that.inRoom(t, "R1", func(room *entity.Room) {
		active = room.Game.ActivePlayer().ID
		opponent, _ := room.Game.Opponent(active)
		waiting = opponent.ID
	})

	return active, waiting
}

// flush - waits until every task queued so far on the room has run.
func (that *testEnv) flush(t *testing.T, roomID string) {
	t.Helper()

	_ = that.rooms.Execute(that.ctx, roomID, func(*entity.Room) error { return nil })
}
