package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/policy"
	"github.com/noah-isme/eventhub-api/internal/repository"
)

// ActivityEntry describes a workflow transition to be recorded.
type ActivityEntry struct {
	Actor      models.User
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Metadata   map[string]interface{}
}

// ActivityService records and exposes the audit trail of workflow
// transitions.
type ActivityService interface {
	// Record persists an audit entry. Failures are logged, never propagated:
	// the audit trail must not fail the workflow that feeds it.
	Record(ctx context.Context, entry ActivityEntry)
	List(ctx context.Context, actorID uuid.UUID, filter repository.ActivityLogFilter) (dto.ActivityPageResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewActivityService builds the audit trail service.
func NewActivityService(repo repository.ActivityLogRepository, users repository.UserRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		users:  users,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	record := models.ActivityLog{
		ActorID:    entry.Actor.ID,
		ActorRole:  string(entry.Actor.Role),
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   datatypes.JSONMap(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to record activity")
	}
}

func (s *activityService) List(ctx context.Context, actorID uuid.UUID, filter repository.ActivityLogFilter) (dto.ActivityPageResponse, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.ActivityPageResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceActivityLog}, policy.OpList)
	if !decision.Allowed {
		return dto.ActivityPageResponse{}, apperr.Forbidden(decision.Reason)
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityPageResponse{}, err
	}

	return dto.NewActivityPageResponse(entries, filter.Page, filter.PageSize, total), nil
}
