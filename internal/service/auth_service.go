package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/repository"
)

var telegramPattern = regexp.MustCompile(`^@[a-zA-Z0-9_]{1,64}$`)

// AuthService handles account registration and token issuance.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.TokenResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error)
	Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenResponse, error)
}

type authService struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	tokens    TokenService
	activity  ActivityService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService builds the authentication service.
func NewAuthService(users repository.UserRepository, companies repository.CompanyRepository, tokens TokenService, activity ActivityService, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		companies: companies,
		tokens:    tokens,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	role := models.Role(payload.Role)
	if err := validateTelegram(role, payload.TelegramUsername); err != nil {
		return dto.TokenResponse{}, err
	}

	companyID, err := s.resolveCompany(ctx, role, payload.CompanyID)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, payload.Email)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	if exists {
		return dto.TokenResponse{}, apperr.Conflict("email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	user := models.User{
		Name:             payload.Name,
		Email:            payload.Email,
		Password:         string(hash),
		Role:             role,
		Status:           models.StatusRegistered,
		TelegramUsername: payload.TelegramUsername,
		CompanyID:        companyID,
	}

	if err := s.users.CreateWithRequest(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.TokenResponse{}, apperr.Conflict("email already exists")
		}
		return dto.TokenResponse{}, err
	}

	access, refresh, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      user,
		Action:     models.ActivityUserRegistered,
		EntityType: "user",
		EntityID:   &user.ID,
		Metadata:   map[string]interface{}{"role": string(user.Role)},
	})

	s.logger.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user registered")

	return dto.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenResponse{}, apperr.Authentication("invalid email or password")
		}
		return dto.TokenResponse{}, err
	}

	if user.Archived {
		return dto.TokenResponse{}, apperr.Authentication("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		return dto.TokenResponse{}, apperr.Authentication("invalid email or password")
	}

	access, refresh, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	return dto.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	userID, err := s.tokens.Rotate(ctx, payload.RefreshToken)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := resolveActor(ctx, s.users, userID)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	access, refresh, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	return dto.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) resolveCompany(ctx context.Context, role models.Role, rawID string) (*uuid.UUID, error) {
	if role != models.RoleManager {
		if rawID != "" {
			return nil, apperr.Validation("only managers can belong to a company")
		}
		return nil, nil
	}

	if rawID == "" {
		return nil, apperr.Validation("managers must specify a company")
	}

	companyID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.Validation("invalid company identifier")
	}

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("company not found")
		}
		return nil, err
	}

	return &companyID, nil
}

// validateTelegram applies the role-specific telegram username rules:
// managers must provide one, students may, the dean's office must not.
func validateTelegram(role models.Role, username string) error {
	switch role {
	case models.RoleManager:
		if username == "" || !telegramPattern.MatchString(username) {
			return apperr.Validation("telegram username is required and must start with @ followed by 1-64 letters, numbers or underscores")
		}
	case models.RoleStudent:
		if username != "" && !telegramPattern.MatchString(username) {
			return apperr.Validation("telegram username must start with @ followed by 1-64 letters, numbers or underscores")
		}
	case models.RoleDean:
		if username != "" {
			return apperr.Validation("the dean's office cannot provide a telegram username")
		}
	}
	return nil
}
