package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/models"
)

const refreshKeyPrefix = "refresh:"

// TokenService issues JWT access tokens and manages the redis-backed refresh
// token store. A refresh token is opaque to clients; validity is solely its
// presence in the store.
type TokenService interface {
	IssuePair(ctx context.Context, user models.User) (access, refresh string, err error)
	// Rotate exchanges a stored refresh token for the user it belongs to and
	// removes it. Returns an Authentication error for unknown tokens.
	Rotate(ctx context.Context, refreshToken string) (uuid.UUID, error)
}

type tokenService struct {
	redis      *redis.Client
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTokenService builds the token issuer.
func NewTokenService(redisClient *redis.Client, secret string, accessTTL, refreshTTL time.Duration, logger zerolog.Logger) TokenService {
	return &tokenService{
		redis:      redisClient,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger.With().Str("component", "token_service").Logger(),
		now:        time.Now,
	}
}

func (s *tokenService) IssuePair(ctx context.Context, user models.User) (string, string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := uuid.NewString()
	if err := s.redis.Set(ctx, refreshKeyPrefix+refresh, user.ID.String(), s.refreshTTL).Err(); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return access, refresh, nil
}

func (s *tokenService) Rotate(ctx context.Context, refreshToken string) (uuid.UUID, error) {
	key := refreshKeyPrefix + refreshToken

	// GETDEL consumes the token in one round trip, so concurrent rotations
	// of the same token have exactly one winner.
	stored, err := s.redis.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, apperr.Authentication("invalid or expired refresh token")
		}
		return uuid.Nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	userID, err := uuid.Parse(stored)
	if err != nil {
		return uuid.Nil, apperr.Authentication("invalid or expired refresh token")
	}

	s.logger.Debug().Str("user_id", userID.String()).Msg("refresh token rotated")

	return userID, nil
}
