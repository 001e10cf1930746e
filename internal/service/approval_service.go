package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/observability"
	"github.com/noah-isme/eventhub-api/internal/policy"
	"github.com/noah-isme/eventhub-api/internal/repository"
)

// ApprovalService manages the membership approval workflow. Requests are
// created during registration; here they are listed and settled. Once a
// request is processed the decision is terminal.
type ApprovalService interface {
	ListPending(ctx context.Context, actorID uuid.UUID, page, pageSize int) (dto.PendingUserPageResponse, error)
	Approve(ctx context.Context, actorID, requestID uuid.UUID) error
	Reject(ctx context.Context, actorID, requestID uuid.UUID, payload dto.RejectUserRequest) error
}

type approvalService struct {
	users     repository.UserRepository
	requests  repository.ApprovalRequestRepository
	activity  ActivityService
	notifier  Notifier
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewApprovalService builds the approval workflow service.
func NewApprovalService(users repository.UserRepository, requests repository.ApprovalRequestRepository, activity ActivityService, notifier Notifier, validate *validator.Validate, logger zerolog.Logger) ApprovalService {
	return &approvalService{
		users:     users,
		requests:  requests,
		activity:  activity,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "approval_service").Logger(),
	}
}

func (s *approvalService) ListPending(ctx context.Context, actorID uuid.UUID, page, pageSize int) (dto.PendingUserPageResponse, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.PendingUserPageResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceApprovalRequest}, policy.OpListPending)
	if !decision.Allowed {
		return dto.PendingUserPageResponse{}, apperr.Forbidden(decision.Reason)
	}

	filter := repository.PendingRequestFilter{Page: page, PageSize: pageSize}
	if actor.Role == models.RoleManager {
		if actor.CompanyID == nil {
			return dto.PendingUserPageResponse{}, apperr.Conflict("manager is not assigned to any company")
		}
		filter.CompanyID = actor.CompanyID
	}

	requests, total, err := s.requests.ListUnprocessed(ctx, filter)
	if err != nil {
		return dto.PendingUserPageResponse{}, err
	}

	return dto.NewPendingUserPageResponse(requests, page, pageSize, total), nil
}

func (s *approvalService) Approve(ctx context.Context, actorID, requestID uuid.UUID) error {
	actor, request, err := s.loadForDecision(ctx, actorID, requestID, policy.OpApprove)
	if err != nil {
		return err
	}

	outcome := repository.ProcessOutcome{UserStatus: models.StatusApproved}
	if err := s.requests.Process(ctx, requestID, outcome); err != nil {
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			return apperr.Conflict("this request has already been processed")
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityUserApproved,
		EntityType: "approval_request",
		EntityID:   &request.ID,
		Metadata:   map[string]interface{}{"target_user_id": request.UserID.String()},
	})

	if request.User != nil {
		s.notifier.UserApproved(*request.User)
	}
	observability.ApprovalDecisions().WithLabelValues("approved").Inc()

	s.logger.Info().Str("request_id", requestID.String()).Str("actor_id", actorID.String()).Msg("approval request approved")

	return nil
}

func (s *approvalService) Reject(ctx context.Context, actorID, requestID uuid.UUID, payload dto.RejectUserRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	actor, request, err := s.loadForDecision(ctx, actorID, requestID, policy.OpReject)
	if err != nil {
		return err
	}

	reason := payload.Reason
	outcome := repository.ProcessOutcome{
		RejectionReason: &reason,
		UserStatus:      models.StatusRejected,
		ArchiveUser:     true,
	}
	if err := s.requests.Process(ctx, requestID, outcome); err != nil {
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			return apperr.Conflict("this request has already been processed")
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityUserRejected,
		EntityType: "approval_request",
		EntityID:   &request.ID,
		Metadata: map[string]interface{}{
			"target_user_id": request.UserID.String(),
			"reason":         reason,
		},
	})

	if request.User != nil {
		s.notifier.UserRejected(*request.User, reason)
	}
	observability.ApprovalDecisions().WithLabelValues("rejected").Inc()

	s.logger.Info().Str("request_id", requestID.String()).Str("actor_id", actorID.String()).Msg("approval request rejected")

	return nil
}

// loadForDecision runs the shared approve/reject guard sequence: request must
// exist, must still be unprocessed and the actor must be authorized. The
// unprocessed check here is advisory; the repository's compare-and-set is the
// authoritative one under concurrency.
func (s *approvalService) loadForDecision(ctx context.Context, actorID, requestID uuid.UUID, op policy.Operation) (models.User, models.ApprovalRequest, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return models.User{}, models.ApprovalRequest{}, err
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, models.ApprovalRequest{}, apperr.NotFound("request not found")
		}
		return models.User{}, models.ApprovalRequest{}, err
	}

	if request.Processed {
		return models.User{}, models.ApprovalRequest{}, apperr.Conflict("this request has already been processed")
	}

	resource := policy.Resource{Kind: policy.ResourceApprovalRequest, OwnerID: request.UserID}
	if request.User != nil {
		resource.CompanyID = request.User.CompanyID
	}
	decision := policy.Authorize(policy.ActorFromUser(actor), resource, op)
	if !decision.Allowed {
		return models.User{}, models.ApprovalRequest{}, apperr.Forbidden(decision.Reason)
	}

	return actor, request, nil
}
