package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

// memoryUser keeps users for the lifetime of the process.
type memoryUser struct {
	mu         sync.RWMutex
	users      map[string]entity.User
	byUsername map[string]string
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUser{
		users:      make(map[string]entity.User),
		byUsername: make(map[string]string),
	}
}

func (that *memoryUser) Save(_ context.Context, user *entity.User) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	key := strings.ToLower(user.Username)
	if id, ok := that.byUsername[key]; ok && id != user.ID {
		return fmt.Errorf("%w: %s", apperror.ErrUserAlreadyExists, user.Username)
	}

	that.users[user.ID] = *user
	that.byUsername[key] = user.ID

	return nil
}

func (that *memoryUser) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	that.mu.RLock()
	id, ok := that.byUsername[strings.ToLower(username)]
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrUserNotFound
	}

	return that.FindByID(ctx, id)
}

func (that *memoryUser) FindByID(_ context.Context, id string) (*entity.User, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	user, ok := that.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}

	return &user, nil
}

func (that *memoryUser) RecordResult(_ context.Context, userID string, outcome entity.Outcome) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	user, ok := that.users[userID]
	if !ok {
		return apperror.ErrUserNotFound
	}

	user.Apply(outcome)
	that.users[userID] = user

	return nil
}
