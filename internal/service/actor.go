package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/repository"
)

// resolveActor loads the acting user for a workflow call. Archived accounts
// are treated as nonexistent: a rejected user can no longer act.
func resolveActor(ctx context.Context, users repository.UserRepository, actorID uuid.UUID) (models.User, error) {
	user, err := users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.Authentication("account not found")
		}
		return models.User{}, err
	}

	if user.Archived {
		return models.User{}, apperr.Authentication("account not found")
	}

	return user, nil
}
