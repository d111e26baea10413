package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/scrabble-backend/internal/repository/storage"
)

const (
	containerTTL = 120
	startTimeout = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite - a throw-away Redis container shared by the subtests of one test.
// Tests are skipped when Docker is not available.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	ctx   context.Context
	store *storage.RedisStorage
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}

	t.Cleanup(func() {
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			t.Errorf("could not purge redis container: %v", purgeErr)
		}
	})

	// hard kill if the cleanup never runs
	_ = resource.Expire(containerTTL)

	pool.MaxWait = startTimeout

	// the server inside the container needs a moment before it accepts connections
	var store *storage.RedisStorage
	if err = pool.Retry(func() error {
		var connErr error
		store, connErr = storage.NewRedisStorage(ctx, resource.GetHostPort(redisPort), "", 0)

		return connErr
	}); err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	st := &Suite{
		T:      t,
		Logger: logger,
		ctx:    ctx,
		store:  store,
	}
	st.Reset(t)

	return ctx, st
}

// Client - the connection repositories are built on.
func (that *Suite) Client() *redis.Client {
	return that.store.Connection
}

// Reset - drops every key so the next subtest starts from an empty store.
func (that *Suite) Reset(t *testing.T) {
	t.Helper()

	if err := that.store.Connection.FlushDB(that.ctx).Err(); err != nil {
		t.Fatalf("could not flush redis: %v", err)
	}
}
