package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/pkg"
	"github.com/rocketscienceinc/scrabble-backend/internal/roomqueue"
)

type roomHandle struct {
	room  *entity.Room
	queue *roomqueue.Queue
}

// RoomManager owns every room and its command queue. Room state is only
// touched from the room's own queue; the manager's lock guards the registry,
// the lobby listing and the user to room index.
type RoomManager struct {
	logger    *slog.Logger
	now       func() time.Time
	queueSize int
	events    broadcaster

	mu          sync.RWMutex
	rooms       map[string]*roomHandle
	listings    map[string]entity.RoomInfo
	memberships map[string]string

	onPanic func(roomID string, members []string)
}

func NewRoomManager(logger *slog.Logger, notifier Notifier, queueSize int, now func() time.Time) *RoomManager {
	if now == nil {
		now = time.Now
	}

	return &RoomManager{
		logger:      logger.With("component", "room_manager"),
		now:         now,
		queueSize:   queueSize,
		events:      broadcaster{notifier: notifier},
		rooms:       make(map[string]*roomHandle),
		listings:    make(map[string]entity.RoomInfo),
		memberships: make(map[string]string),
	}
}

// CreateRoom - opens a room with host as its only member. An empty roomID gets a generated one.
func (that *RoomManager) CreateRoom(ctx context.Context, host entity.Member, roomID string) (entity.RoomInfo, error) {
	log := that.logger.With("method", "CreateRoom", "userID", host.ID)

	if roomID == "" {
		roomID = pkg.GenerateRoomID()
	}

	that.mu.Lock()
	if _, ok := that.rooms[roomID]; ok {
		that.mu.Unlock()
		return entity.RoomInfo{}, fmt.Errorf("%w: %s", apperror.ErrRoomAlreadyExists, roomID)
	}

	if current, ok := that.memberships[host.ID]; ok {
		that.mu.Unlock()
		return entity.RoomInfo{}, fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, current)
	}

	room := entity.NewRoom(roomID, host, that.now())
	handle := &roomHandle{room: room}
	handle.queue = roomqueue.New(that.logger.With("roomID", roomID), that.queueSize, func(any) {
		that.panicked(room)
	})

	that.rooms[roomID] = handle
	that.memberships[host.ID] = roomID
	that.listings[roomID] = room.Info()
	that.mu.Unlock()

	log.Info("room created", "roomID", roomID)

	var info entity.RoomInfo
	err := that.Execute(ctx, roomID, func(room *entity.Room) error {
		info = room.Info()
		that.events.state(room)
		return nil
	})
	if err != nil {
		return entity.RoomInfo{}, err
	}

	return info, nil
}

// JoinRoom - adds the user to a room that has a free slot and no running game.
// Members of a running game come back through reconnection instead.
func (that *RoomManager) JoinRoom(ctx context.Context, user entity.Member, roomID string) error {
	return that.Execute(ctx, roomID, func(room *entity.Room) error {
		if room.IsMember(user.ID) {
			that.events.state(room)
			return nil
		}

		if err := that.addMember(room, user); err != nil {
			return err
		}

		that.logger.Info("player joined room", "roomID", roomID, "userID", user.ID)
		that.events.publish(room, Event{Type: EventPlayerJoined, PlayerID: user.ID})

		return nil
	})
}

// LeaveRoom - removes the user from a room without a running game.
func (that *RoomManager) LeaveRoom(ctx context.Context, userID, roomID string) error {
	return that.Execute(ctx, roomID, func(room *entity.Room) error {
		if !room.IsMember(userID) {
			return apperror.ErrNotRoomMember
		}

		if room.HasOngoingGame() {
			return apperror.ErrGameInProgress
		}

		that.removeMember(room, userID)
		that.events.publish(room, Event{Type: EventPlayerLeft, PlayerID: userID})

		return nil
	})
}

// SetReady - marks a member as ready (or not) to start.
func (that *RoomManager) SetReady(ctx context.Context, userID, roomID string, ready bool) error {
	return that.Execute(ctx, roomID, func(room *entity.Room) error {
		if !room.IsMember(userID) {
			return apperror.ErrNotRoomMember
		}

		if room.HasOngoingGame() {
			return apperror.ErrGameInProgress
		}

		room.Ready[userID] = ready
		room.Touch(that.now())
		that.events.publish(room, Event{Type: EventPlayerReady, PlayerID: userID})

		return nil
	})
}

// ListAvailableRooms - rooms that are neither full nor started. It never waits on a room queue.
func (that *RoomManager) ListAvailableRooms() []entity.RoomInfo {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]entity.RoomInfo, 0, len(that.listings))
	for _, info := range that.listings {
		if !info.Started && !info.Full {
			rooms = append(rooms, info)
		}
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	return rooms
}

// RoomOf - the room the user currently belongs to.
func (that *RoomManager) RoomOf(userID string) (string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	roomID, ok := that.memberships[userID]

	return roomID, ok
}

// Execute - runs fn on the room's queue and waits for it. The listing is
// refreshed afterwards so lobby reads never touch the room itself.
func (that *RoomManager) Execute(ctx context.Context, roomID string, fn func(room *entity.Room) error) error {
	handle, err := that.handle(roomID)
	if err != nil {
		return err
	}

	err = handle.queue.Do(ctx, func() error {
		if handle.room.Closed {
			return apperror.ErrRoomClosed
		}

		defer that.refreshListing(handle.room)

		return fn(handle.room)
	})
	if errors.Is(err, roomqueue.ErrQueueClosed) {
		return fmt.Errorf("%w: %s", apperror.ErrRoomClosed, roomID)
	}

	return err
}

// Enqueue - schedules fn on the room's queue without waiting.
func (that *RoomManager) Enqueue(roomID string, fn func(room *entity.Room)) error {
	handle, err := that.handle(roomID)
	if err != nil {
		return err
	}

	err = handle.queue.Submit(func() {
		if handle.room.Closed {
			return
		}

		defer that.refreshListing(handle.room)
		fn(handle.room)
	})
	if err != nil {
		return fmt.Errorf("%w: %s", apperror.ErrRoomClosed, roomID)
	}

	return nil
}

// RoomIDs - every open room.
func (that *RoomManager) RoomIDs() []string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	ids := make([]string, 0, len(that.rooms))
	for id := range that.rooms {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// SetPanicHandler - called with the room members after a task of that room panicked.
func (that *RoomManager) SetPanicHandler(fn func(roomID string, members []string)) {
	that.onPanic = fn
}

// addMember must run on the room's queue.
func (that *RoomManager) addMember(room *entity.Room, user entity.Member) error {
	if room.HasOngoingGame() {
		return apperror.ErrGameInProgress
	}

	if room.IsFull() {
		return apperror.ErrRoomFull
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.memberships[user.ID]; ok && current != room.ID {
		return fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, current)
	}

	that.memberships[user.ID] = room.ID
	room.AddMember(user, that.now())

	return nil
}

// removeMember must run on the room's queue.
func (that *RoomManager) removeMember(room *entity.Room, userID string) {
	if !room.RemoveMember(userID, that.now()) {
		return
	}

	that.mu.Lock()
	if that.memberships[userID] == room.ID {
		delete(that.memberships, userID)
	}
	that.mu.Unlock()

	that.logger.Info("player left room", "roomID", room.ID, "userID", userID)
}

// closeRoom must run on the room's queue. The queue stops after the current task.
func (that *RoomManager) closeRoom(room *entity.Room, reason string) {
	if room.Closed {
		return
	}

	that.events.event(room, Event{Type: EventRoomClosed, Reason: reason})
	that.forget(room)

	that.logger.Info("room closed", "roomID", room.ID, "reason", reason)
}

func (that *RoomManager) forget(room *entity.Room) {
	room.Closed = true

	that.mu.Lock()
	handle := that.rooms[room.ID]
	delete(that.rooms, room.ID)
	delete(that.listings, room.ID)
	for _, member := range room.Members {
		if that.memberships[member.ID] == room.ID {
			delete(that.memberships, member.ID)
		}
	}
	that.mu.Unlock()

	if handle != nil {
		handle.queue.Close()
	}
}

func (that *RoomManager) panicked(room *entity.Room) {
	members := make([]string, 0, len(room.Members))
	for _, member := range room.Members {
		members = append(members, member.ID)
	}

	that.forget(room)

	if that.onPanic != nil {
		that.onPanic(room.ID, members)
	}
}

func (that *RoomManager) refreshListing(room *entity.Room) {
	if room.Closed {
		return
	}

	that.mu.Lock()
	that.listings[room.ID] = room.Info()
	that.mu.Unlock()
}

func (that *RoomManager) handle(roomID string) (*roomHandle, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	handle, ok := that.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return handle, nil
}
