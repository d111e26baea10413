package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/pkg"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 24
	minPasswordLength = 6
)

type UserService interface {
	Register(ctx context.Context, username, password string) (*entity.User, error)
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	RecordResult(ctx context.Context, userID string, outcome entity.Outcome) error
}

type userRepo interface {
	Save(ctx context.Context, user *entity.User) error
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	RecordResult(ctx context.Context, userID string, outcome entity.Outcome) error
}

type userService struct {
	logger   *slog.Logger
	userRepo userRepo
	now      func() time.Time
}

func NewUserService(logger *slog.Logger, userRepo userRepo, now func() time.Time) UserService {
	if now == nil {
		now = time.Now
	}

	return &userService{
		logger:   logger.With("component", "user_service"),
		userRepo: userRepo,
		now:      now,
	}
}

func (that *userService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)

	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	_, err := that.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUserAlreadyExists, username)
	}

	if !errors.Is(err, apperror.ErrUserNotFound) {
		return nil, fmt.Errorf("could not check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &entity.User{
		ID:           pkg.GenerateUserID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    that.now().UTC(),
	}

	if err = that.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("could not save user: %w", err)
	}

	that.logger.Info("user registered", "userID", user.ID, "username", user.Username)

	return user, nil
}

// Authenticate - an unknown user and a wrong password look the same to the caller.
func (that *userService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := that.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, apperror.ErrUserNotFound) {
		return nil, apperror.ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("could not get user by username: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return user, nil
}

func (that *userService) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := that.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}

	return user, nil
}

func (that *userService) RecordResult(ctx context.Context, userID string, outcome entity.Outcome) error {
	if err := that.userRepo.RecordResult(ctx, userID, outcome); err != nil {
		return fmt.Errorf("could not record result: %w", err)
	}

	that.logger.Debug("result recorded", "userID", userID, "outcome", outcome)

	return nil
}

func validateCredentials(username, password string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return apperror.ErrInvalidUsername
	}

	for _, r := range username {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return apperror.ErrInvalidUsername
		}
	}

	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperror.ErrWeakPassword
	}

	return nil
}
