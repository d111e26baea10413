package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/repository/storage"
	"github.com/rocketscienceinc/scrabble-backend/testing/suite"
)

func newUser(id, username string) *entity.User {
	return &entity.User{
		ID:           id,
		Username:     username,
		PasswordHash: "hash-" + id,
		CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

// testUserRepository - the behaviour every user store shares.
func testUserRepository(t *testing.T, newRepo func(t *testing.T) UserRepository) {
	t.Helper()

	ctx := context.Background()

	t.Run("Save and find", func(t *testing.T) {
		repo := newRepo(t)

		// Given: a saved user
		user := newUser("u1", "Alice")
		require.NoError(t, repo.Save(ctx, user))

		// When: looking the user up by id and by name in another case
		byID, err := repo.FindByID(ctx, "u1")
		require.NoError(t, err)
		byName, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)

		// Then: both lookups return the stored user
		assert.Equal(t, user.Username, byID.Username)
		assert.Equal(t, user.PasswordHash, byID.PasswordHash)
		assert.True(t, user.CreatedAt.Equal(byID.CreatedAt))
		assert.Equal(t, byID.ID, byName.ID)
	})

	t.Run("Usernames are unique regardless of case", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, newUser("u1", "Alice")))

		err := repo.Save(ctx, newUser("u2", "ALICE"))

		assert.ErrorIs(t, err, apperror.ErrUserAlreadyExists)
	})

	t.Run("Unknown users", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, apperror.ErrUserNotFound)

		_, err = repo.FindByUsername(ctx, "missing")
		assert.ErrorIs(t, err, apperror.ErrUserNotFound)

		err = repo.RecordResult(ctx, "missing", entity.OutcomeWin)
		assert.ErrorIs(t, err, apperror.ErrUserNotFound)
	})

	t.Run("Results add up", func(t *testing.T) {
		// Given: a user without games
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, newUser("u1", "Alice")))

		// When: recording a win, two losses and a draw
		for _, outcome := range []entity.Outcome{entity.OutcomeWin, entity.OutcomeLoss, entity.OutcomeLoss, entity.OutcomeDraw} {
			require.NoError(t, repo.RecordResult(ctx, "u1", outcome))
		}

		// Then: the statistics reflect every game
		user, err := repo.FindByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, user.Wins)
		assert.Equal(t, 2, user.Losses)
		assert.Equal(t, 1, user.Draws)
		assert.Equal(t, 4, user.GamesPlayed)
	})
}

func TestMemoryUserRepository(t *testing.T) {
	testUserRepository(t, func(*testing.T) UserRepository {
		return NewMemoryUserRepository()
	})
}

func TestSQLiteUserRepository(t *testing.T) {
	ctx := context.Background()

	testUserRepository(t, func(t *testing.T) UserRepository {
		st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "users.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })

		require.NoError(t, st.Init(ctx))

		return NewUserRepository(st.Connection)
	})
}

func TestRedisUserRepository(t *testing.T) {
	ctx, st := suite.New(t)

	testUserRepository(t, func(t *testing.T) UserRepository {
		st.Reset(t)

		return NewRedisUserRepository(st.Client())
	})

	t.Run("A failed save releases the username", func(t *testing.T) {
		st.Reset(t)
		repo := NewRedisUserRepository(st.Client())

		// Given: the stats key of the new user holds a value HSET cannot write to
		require.NoError(t, st.Client().Set(ctx, statsKeyPrefix+"u1", "taken", 0).Err())

		// When: saving the user
		err := repo.Save(ctx, newUser("u1", "Alice"))

		// Then: the save fails and leaves nothing behind
		require.Error(t, err)

		_, err = repo.FindByUsername(ctx, "alice")
		assert.ErrorIs(t, err, apperror.ErrUserNotFound)

		exists, err := st.Client().Exists(ctx, userKeyPrefix+"u1").Result()
		require.NoError(t, err)
		assert.Zero(t, exists)

		// and the name can be registered again
		require.NoError(t, repo.Save(ctx, newUser("u2", "Alice")))

		user, err := repo.FindByUsername(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, "u2", user.ID)
	})
}
