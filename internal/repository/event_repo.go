package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// EventFilter describes pagination and scoping options for event listings.
type EventFilter struct {
	Page      int
	PageSize  int
	CompanyID *uuid.UUID
}

// EventRepository defines persistence operations for events.
type EventRepository interface {
	List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Save(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository instantiates a GORM-backed repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})

	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}

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

	var events []models.Event
	if err := query.Preload("Company").Order("start_time ASC").Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Preload("Company").Preload("Manager").First(&event, "id = ?", id).Error; err != nil {
		return models.Event{}, err
	}

	return event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) Save(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Registration{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Event{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
