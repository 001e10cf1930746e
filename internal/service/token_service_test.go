package service

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/models"
)

func newTokenServiceForTest(t *testing.T) (TokenService, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	return NewTokenService(client, "test-secret", 15*time.Minute, time.Hour, zerolog.Nop()), mini
}

func TestTokenServiceIssuePairClaims(t *testing.T) {
	svc, mini := newTokenServiceForTest(t)
	ctx := context.Background()

	user := models.User{ID: uuid.New(), Email: "dean@example.com", Role: models.RoleDean}
	access, refresh, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	token, err := jwt.Parse(access, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, user.ID.String(), claims["sub"])
	require.Equal(t, "dean@example.com", claims["email"])
	require.Equal(t, "dean", claims["role"])

	stored, err := mini.Get("refresh:" + refresh)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), stored)
}

func TestTokenServiceRotateConsumesToken(t *testing.T) {
	svc, mini := newTokenServiceForTest(t)
	ctx := context.Background()

	user := models.User{ID: uuid.New(), Email: "student@example.com", Role: models.RoleStudent}
	_, refresh, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)

	userID, err := svc.Rotate(ctx, refresh)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	require.False(t, mini.Exists("refresh:"+refresh), "rotated token must be single use")

	_, err = svc.Rotate(ctx, refresh)
	require.True(t, apperr.IsKind(err, apperr.KindAuthentication))
}

func TestTokenServiceRotateSingleWinner(t *testing.T) {
	svc, _ := newTokenServiceForTest(t)
	ctx := context.Background()

	user := models.User{ID: uuid.New(), Role: models.RoleStudent}
	_, refresh, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)

	const callers = 50
	results := make(chan error, callers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < callers; i++ {
		go func() {
			start.Wait()
			_, err := svc.Rotate(ctx, refresh)
			results <- err
		}()
	}
	start.Done()

	var succeeded int
	for i := 0; i < callers; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			require.True(t, apperr.IsKind(err, apperr.KindAuthentication))
		}
	}
	require.Equal(t, 1, succeeded, "a refresh token must rotate at most once")
}

func TestTokenServiceRotateExpiredToken(t *testing.T) {
	svc, mini := newTokenServiceForTest(t)
	ctx := context.Background()

	user := models.User{ID: uuid.New(), Role: models.RoleStudent}
	_, refresh, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)

	mini.FastForward(2 * time.Hour)

	_, err = svc.Rotate(ctx, refresh)
	require.True(t, apperr.IsKind(err, apperr.KindAuthentication))
}
