package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

const (
	userKeyPrefix     = "user:"
	usernameKeyPrefix = "username:"
	statsKeyPrefix    = "stats:"
)

// redisUser keeps the profile as JSON under user:<id>, the username index
// under username:<name> and the statistics in the stats:<id> hash so results
// are counted with HINCRBY instead of read-modify-write.
type redisUser struct {
	client *redis.Client
}

func NewRedisUserRepository(client *redis.Client) UserRepository {
	return &redisUser{
		client: client,
	}
}

func (that *redisUser) Save(ctx context.Context, user *entity.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	claimed, err := that.client.SetNX(ctx, usernameKey(user.Username), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve username: %w", err)
	}

	if !claimed {
		return fmt.Errorf("%w: %s", apperror.ErrUserAlreadyExists, user.Username)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKeyPrefix+user.ID, userJSON, 0)
		pipe.HSet(ctx, statsKeyPrefix+user.ID,
			"wins", user.Wins,
			"losses", user.Losses,
			"draws", user.Draws,
			"games_played", user.GamesPlayed,
		)

		return nil
	})
	if err != nil {
		// release the name so the user can register again
		if delErr := that.client.Del(context.WithoutCancel(ctx), usernameKey(user.Username), userKeyPrefix+user.ID).Err(); delErr != nil {
			return fmt.Errorf("failed to set user: %w (username left reserved: %w)", err, delErr)
		}

		return fmt.Errorf("failed to set user: %w", err)
	}

	return nil
}

func (that *redisUser) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	id, err := that.client.Get(ctx, usernameKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return that.FindByID(ctx, id)
}

func (that *redisUser) FindByID(ctx context.Context, id string) (*entity.User, error) {
	response, err := that.client.Get(ctx, userKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	var user entity.User
	if err = json.Unmarshal([]byte(response), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	stats, err := that.client.HGetAll(ctx, statsKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	user.Wins = statValue(stats, "wins")
	user.Losses = statValue(stats, "losses")
	user.Draws = statValue(stats, "draws")
	user.GamesPlayed = statValue(stats, "games_played")

	return &user, nil
}

func (that *redisUser) RecordResult(ctx context.Context, userID string, outcome entity.Outcome) error {
	exists, err := that.client.Exists(ctx, userKeyPrefix+userID).Result()
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}

	if exists == 0 {
		return apperror.ErrUserNotFound
	}

	field := ""
	switch outcome {
	case entity.OutcomeWin:
		field = "wins"
	case entity.OutcomeLoss:
		field = "losses"
	case entity.OutcomeDraw:
		field = "draws"
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := statsKeyPrefix + userID
		pipe.HIncrBy(ctx, key, "games_played", 1)
		if field != "" {
			pipe.HIncrBy(ctx, key, field, 1)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}

	return nil
}

func usernameKey(username string) string {
	return usernameKeyPrefix + strings.ToLower(username)
}

func statValue(stats map[string]string, field string) int {
	value, err := strconv.Atoi(stats[field])
	if err != nil {
		return 0
	}

	return value
}
