package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

const DefaultTokenTTL = 24 * time.Hour

type AuthService interface {
	GenerateToken(user *entity.User) (string, error)
	ParseToken(token string) (string, error)
}

type authServiceImpl struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(secretKey string, ttl time.Duration, now func() time.Time) AuthService {
	if now == nil {
		now = time.Now
	}

	return &authServiceImpl{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       now,
	}
}

// GenerateToken - a signed session token the client presents to log in again from a new connection.
func (that *authServiceImpl) GenerateToken(user *entity.User) (string, error) {
	now := that.now()

	claims := jwt.MapClaims{}
	claims["sub"] = user.ID
	claims["username"] = user.Username
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(that.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken - returns the user id of a valid, unexpired token.
func (that *authServiceImpl) ParseToken(tokenString string) (string, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return that.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(that.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: expired", apperror.ErrInvalidToken)
		}

		return "", fmt.Errorf("%w: %w", apperror.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", apperror.ErrInvalidToken
	}

	userID, err := claims.GetSubject()
	if err != nil || userID == "" {
		return "", apperror.ErrInvalidToken
	}

	return userID, nil
}
