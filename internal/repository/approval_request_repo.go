package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// PendingRequestFilter scopes unprocessed-request listings.
type PendingRequestFilter struct {
	Page     int
	PageSize int
	// CompanyID restricts results to requests whose user belongs to the given
	// company. Nil means no company scoping (dean view).
	CompanyID *uuid.UUID
}

// ProcessOutcome describes the terminal state applied to a request and its
// target user.
type ProcessOutcome struct {
	RejectionReason *string
	UserStatus      models.Status
	ArchiveUser     bool
}

// ApprovalRequestRepository defines persistence operations for approval
// requests.
type ApprovalRequestRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.ApprovalRequest, error)
	ListUnprocessed(ctx context.Context, filter PendingRequestFilter) ([]models.ApprovalRequest, int64, error)
	// Process atomically marks the request processed and applies the outcome
	// to the target user. Returns ErrAlreadyProcessed when a concurrent writer
	// already settled the request.
	Process(ctx context.Context, requestID uuid.UUID, outcome ProcessOutcome) error
}

type approvalRequestRepository struct {
	db *gorm.DB
}

// NewApprovalRequestRepository instantiates a GORM-backed repository.
func NewApprovalRequestRepository(db *gorm.DB) ApprovalRequestRepository {
	return &approvalRequestRepository{db: db}
}

func (r *approvalRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (models.ApprovalRequest, error) {
	var request models.ApprovalRequest
	if err := r.db.WithContext(ctx).Preload("User").Preload("User.Company").First(&request, "id = ?", id).Error; err != nil {
		return models.ApprovalRequest{}, err
	}

	return request, nil
}

func (r *approvalRequestRepository) ListUnprocessed(ctx context.Context, filter PendingRequestFilter) ([]models.ApprovalRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ApprovalRequest{}).
		Joins("JOIN users ON users.id = approval_requests.user_id").
		Where("approval_requests.processed = ?", false).
		Where("users.archived = ?", false)

	if filter.CompanyID != nil {
		query = query.Where("users.company_id = ?", *filter.CompanyID)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var requests []models.ApprovalRequest
	if err := query.Preload("User").Preload("User.Company").
		Order("approval_requests.created_at ASC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *approvalRequestRepository) Process(ctx context.Context, requestID uuid.UUID, outcome ProcessOutcome) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.ApprovalRequest
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			return err
		}

		// Compare-and-set on the processed flag: only one of two concurrent
		// writers observes RowsAffected == 1.
		result := tx.Model(&models.ApprovalRequest{}).
			Where("id = ? AND processed = ?", requestID, false).
			Updates(map[string]interface{}{
				"processed":        true,
				"rejection_reason": outcome.RejectionReason,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		updates := map[string]interface{}{"status": outcome.UserStatus}
		if outcome.ArchiveUser {
			updates["archived"] = true
		}

		return tx.Model(&models.User{}).Where("id = ?", request.UserID).Updates(updates).Error
	})
}
