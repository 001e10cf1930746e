package dto

import (
	"github.com/google/uuid"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// UserResponse is the serialized representation of an account.
type UserResponse struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Role             models.Role      `json:"role"`
	Status           models.Status    `json:"status"`
	TelegramUsername string           `json:"telegram_username,omitempty"`
	Company          *CompanyResponse `json:"company,omitempty"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	response := UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             user.Role,
		Status:           user.Status,
		TelegramUsername: user.TelegramUsername,
	}
	if user.Company != nil {
		company := NewCompanyResponse(*user.Company)
		response.Company = &company
	}
	return response
}

// ProfileUpdateRequest carries the editable profile fields.
type ProfileUpdateRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=255"`
	Email            string `json:"email" validate:"required,email"`
	TelegramUsername string `json:"telegram_username" validate:"omitempty,max=64"`
}

// StudentResponse identifies a registered student in event listings.
type StudentResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
