package dto

import (
	"github.com/google/uuid"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// CompanyCreateRequest is the payload for registering a new company.
type CompanyCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

// CompanyUpdateRequest renames an existing company.
type CompanyUpdateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

// CompanyResponse is the serialized representation of a company.
type CompanyResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NewCompanyResponse converts a model into a DTO.
func NewCompanyResponse(company models.Company) CompanyResponse {
	return CompanyResponse{ID: company.ID, Name: company.Name}
}

// CompanyPageResponse is a paginated company listing.
type CompanyPageResponse struct {
	Items      []CompanyResponse `json:"items"`
	Pagination Pagination        `json:"pagination"`
}

// NewCompanyPageResponse builds a paginated listing from models.
func NewCompanyPageResponse(companies []models.Company, page, pageSize int, total int64) CompanyPageResponse {
	items := make([]CompanyResponse, 0, len(companies))
	for _, company := range companies {
		items = append(items, NewCompanyResponse(company))
	}
	return CompanyPageResponse{
		Items:      items,
		Pagination: Pagination{Page: page, PageSize: pageSize, TotalItems: total},
	}
}
