package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/repository"
)

// DeanSeed carries the credentials for the initial dean's office account.
type DeanSeed struct {
	Name     string
	Email    string
	Password string
}

// EnsureDean creates the dean's office account on first boot. The dean is
// never registered through the public sign-up flow, so the account is seeded
// from configuration, already approved. Idempotent: an existing account with
// the configured email is left untouched.
func EnsureDean(ctx context.Context, users repository.UserRepository, seed DeanSeed, logger zerolog.Logger) error {
	log := logger.With().Str("component", "bootstrap").Logger()

	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" || seed.Password == "" {
		log.Warn().Msg("dean seed credentials not configured, skipping")
		return nil
	}

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "Dean's Office"
	}

	dean := models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleDean,
		Status:   models.StatusApproved,
	}

	if err := users.Create(ctx, &dean); err != nil {
		// A concurrent replica may have seeded the same account.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	log.Info().Str("email", email).Msg("dean account seeded")

	return nil
}
