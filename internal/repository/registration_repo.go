package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// RegistrationFilter describes pagination for registration listings.
type RegistrationFilter struct {
	Page     int
	PageSize int
}

// RegistrationRepository defines persistence operations for event
// registrations. The unique (student, event) index is the concurrency
// backstop for duplicate active registrations.
type RegistrationRepository interface {
	FindByStudentAndEvent(ctx context.Context, studentID, eventID uuid.UUID) (models.Registration, error)
	Create(ctx context.Context, registration *models.Registration) error
	// Reactivate clears UnregisteredAt on an inactive row. Returns
	// ErrRegistrationActive when the row is already active.
	Reactivate(ctx context.Context, id uuid.UUID, at time.Time) error
	// Deactivate stamps UnregisteredAt on an active row. Returns
	// ErrRegistrationInactive when the row is already inactive.
	Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error
	ListActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error)
	ListActiveByStudent(ctx context.Context, studentID uuid.UUID, filter RegistrationFilter) ([]models.Registration, int64, error)
}

type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository instantiates a GORM-backed repository.
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) FindByStudentAndEvent(ctx context.Context, studentID, eventID uuid.UUID) (models.Registration, error) {
	var registration models.Registration
	if err := r.db.WithContext(ctx).First(&registration, "student_id = ? AND event_id = ?", studentID, eventID).Error; err != nil {
		return models.Registration{}, err
	}

	return registration, nil
}

func (r *registrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *registrationRepository) Reactivate(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("id = ? AND unregistered_at IS NOT NULL", id).
		Updates(map[string]interface{}{
			"unregistered_at": nil,
			"registered_at":   at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationActive
	}
	return nil
}

func (r *registrationRepository) Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("id = ? AND unregistered_at IS NULL", id).
		Update("unregistered_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationInactive
	}
	return nil
}

func (r *registrationRepository) ListActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error) {
	var registrations []models.Registration
	if err := r.db.WithContext(ctx).Preload("Student").
		Where("event_id = ? AND unregistered_at IS NULL", eventID).
		Order("registered_at ASC").Find(&registrations).Error; err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *registrationRepository) ListActiveByStudent(ctx context.Context, studentID uuid.UUID, filter RegistrationFilter) ([]models.Registration, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("student_id = ? AND unregistered_at IS NULL", studentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
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

	var registrations []models.Registration
	if err := query.Preload("Event").Preload("Event.Company").
		Order("registered_at DESC").Find(&registrations).Error; err != nil {
		return nil, 0, err
	}

	return registrations, total, nil
}
