package dto

import (
	"github.com/google/uuid"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// RejectUserRequest carries the rejection reason for an approval request.
type RejectUserRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=512"`
}

// PendingUserResponse describes an unprocessed approval request and the
// account awaiting a decision.
type PendingUserResponse struct {
	RequestID        uuid.UUID   `json:"request_id"`
	UserID           uuid.UUID   `json:"user_id"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Role             models.Role `json:"role"`
	TelegramUsername string      `json:"telegram_username,omitempty"`
	CompanyName      string      `json:"company_name,omitempty"`
}

// NewPendingUserResponse converts an approval request with its preloaded user
// into a DTO.
func NewPendingUserResponse(request models.ApprovalRequest) PendingUserResponse {
	response := PendingUserResponse{RequestID: request.ID, UserID: request.UserID}
	if request.User != nil {
		response.Name = request.User.Name
		response.Email = request.User.Email
		response.Role = request.User.Role
		response.TelegramUsername = request.User.TelegramUsername
		if request.User.Company != nil {
			response.CompanyName = request.User.Company.Name
		}
	}
	return response
}

// PendingUserPageResponse is a paginated pending-request listing.
type PendingUserPageResponse struct {
	Items      []PendingUserResponse `json:"items"`
	Pagination Pagination            `json:"pagination"`
}

// NewPendingUserPageResponse builds a paginated listing from models.
func NewPendingUserPageResponse(requests []models.ApprovalRequest, page, pageSize int, total int64) PendingUserPageResponse {
	items := make([]PendingUserResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, NewPendingUserResponse(request))
	}
	return PendingUserPageResponse{
		Items:      items,
		Pagination: Pagination{Page: page, PageSize: pageSize, TotalItems: total},
	}
}
