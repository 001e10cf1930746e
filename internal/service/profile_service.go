package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/policy"
	"github.com/noah-isme/eventhub-api/internal/repository"
)

// ProfileService exposes the caller's own account: viewing works in any
// approval state so users can see where they stand, everything else requires
// an approved account.
type ProfileService interface {
	Me(ctx context.Context, actorID uuid.UUID) (dto.UserResponse, error)
	Update(ctx context.Context, actorID uuid.UUID, payload dto.ProfileUpdateRequest) (dto.UserResponse, error)
	// MyEvents lists the events the student is currently registered for.
	MyEvents(ctx context.Context, actorID uuid.UUID, page, pageSize int) (dto.EventPageResponse, error)
}

type profileService struct {
	users         repository.UserRepository
	registrations repository.RegistrationRepository
	activity      ActivityService
	validator     *validator.Validate
	logger        zerolog.Logger
}

// NewProfileService builds the profile service.
func NewProfileService(users repository.UserRepository, registrations repository.RegistrationRepository, activity ActivityService, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:         users,
		registrations: registrations,
		activity:      activity,
		validator:     validate,
		logger:        logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Me(ctx context.Context, actorID uuid.UUID) (dto.UserResponse, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceProfile, OwnerID: actor.ID}, policy.OpView)
	if !decision.Allowed {
		return dto.UserResponse{}, apperr.Forbidden(decision.Reason)
	}

	return dto.NewUserResponse(actor), nil
}

func (s *profileService) Update(ctx context.Context, actorID uuid.UUID, payload dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceProfile, OwnerID: actor.ID}, policy.OpUpdate)
	if !decision.Allowed {
		return dto.UserResponse{}, apperr.Forbidden(decision.Reason)
	}

	if err := validateTelegram(actor.Role, payload.TelegramUsername); err != nil {
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email != actor.Email {
		taken, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return dto.UserResponse{}, err
		}
		if taken {
			return dto.UserResponse{}, apperr.Conflict("email already exists")
		}
	}

	actor.Name = payload.Name
	actor.Email = email
	actor.TelegramUsername = payload.TelegramUsername

	if err := s.users.Save(ctx, &actor); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, apperr.Conflict("email already exists")
		}
		return dto.UserResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityProfileUpdated,
		EntityType: "user",
		EntityID:   &actor.ID,
	})

	s.logger.Info().Str("user_id", actor.ID.String()).Msg("profile updated")

	return dto.NewUserResponse(actor), nil
}

func (s *profileService) MyEvents(ctx context.Context, actorID uuid.UUID, page, pageSize int) (dto.EventPageResponse, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.EventPageResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceRegistration, OwnerID: actor.ID}, policy.OpList)
	if !decision.Allowed {
		return dto.EventPageResponse{}, apperr.Forbidden(decision.Reason)
	}

	registrations, total, err := s.registrations.ListActiveByStudent(ctx, actor.ID, repository.RegistrationFilter{Page: page, PageSize: pageSize})
	if err != nil {
		return dto.EventPageResponse{}, err
	}

	events := make([]models.Event, 0, len(registrations))
	for _, registration := range registrations {
		if registration.Event != nil {
			events = append(events, *registration.Event)
		}
	}

	return dto.NewEventPageResponse(events, page, pageSize, total), nil
}
