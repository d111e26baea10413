package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

const userColumns = `id, username, password_hash, created_at, wins, losses, draws, games_played`

type UserRepository interface {
	Save(ctx context.Context, user *entity.User) error
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	RecordResult(ctx context.Context, userID string, outcome entity.Outcome) error
}

type userRepository struct {
	conn *sql.DB
}

func NewUserRepository(conn *sql.DB) UserRepository {
	return &userRepository{
		conn: conn,
	}
}

func (that *userRepository) Save(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt.UTC(),
		user.Wins, user.Losses, user.Draws, user.GamesPlayed,
	)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %s", apperror.ErrUserAlreadyExists, user.Username)
	}

	if err != nil {
		return fmt.Errorf("can't save user: %w", err)
	}

	return nil
}

func (that *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	return that.scan(that.conn.QueryRowContext(ctx, query, username))
}

func (that *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	return that.scan(that.conn.QueryRowContext(ctx, query, id))
}

func (that *userRepository) RecordResult(ctx context.Context, userID string, outcome entity.Outcome) error {
	var wins, losses, draws int

	switch outcome {
	case entity.OutcomeWin:
		wins = 1
	case entity.OutcomeLoss:
		losses = 1
	case entity.OutcomeDraw:
		draws = 1
	}

	query := `UPDATE users
		SET wins = wins + ?, losses = losses + ?, draws = draws + ?, games_played = games_played + 1
		WHERE id = ?`

	result, err := that.conn.ExecContext(ctx, query, wins, losses, draws, userID)
	if err != nil {
		return fmt.Errorf("can't record result: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't record result: %w", err)
	}

	if affected == 0 {
		return apperror.ErrUserNotFound
	}

	return nil
}

func (that *userRepository) scan(row *sql.Row) (*entity.User, error) {
	var user entity.User

	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
		&user.Wins, &user.Losses, &user.Draws, &user.GamesPlayed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("can't find user: %w", err)
	}

	return &user, nil
}
