package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// CompanyFilter describes pagination options for company listings.
type CompanyFilter struct {
	Page     int
	PageSize int
}

// CompanyRepository defines persistence operations for companies.
type CompanyRepository interface {
	List(ctx context.Context, filter CompanyFilter) ([]models.Company, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Company, error)
	Create(ctx context.Context, company *models.Company) error
	Save(ctx context.Context, company *models.Company) error
	// Delete removes the company together with its managers and events.
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository instantiates a GORM-backed repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) List(ctx context.Context, filter CompanyFilter) ([]models.Company, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Company{})

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

	var companies []models.Company
	if err := query.Order("name ASC").Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return models.Company{}, err
	}

	return company, nil
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepository) Save(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company models.Company
		if err := tx.First(&company, "id = ?", id).Error; err != nil {
			return err
		}

		var eventIDs []uuid.UUID
		if err := tx.Model(&models.Event{}).Where("company_id = ?", id).Pluck("id", &eventIDs).Error; err != nil {
			return err
		}

		if len(eventIDs) > 0 {
			if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.Registration{}).Error; err != nil {
				return err
			}
			if err := tx.Where("company_id = ?", id).Delete(&models.Event{}).Error; err != nil {
				return err
			}
		}

		var managerIDs []uuid.UUID
		if err := tx.Model(&models.User{}).Where("company_id = ?", id).Pluck("id", &managerIDs).Error; err != nil {
			return err
		}

		if len(managerIDs) > 0 {
			if err := tx.Where("user_id IN ?", managerIDs).Delete(&models.ApprovalRequest{}).Error; err != nil {
				return err
			}
			if err := tx.Where("company_id = ?", id).Delete(&models.User{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&company).Error
	})
}
