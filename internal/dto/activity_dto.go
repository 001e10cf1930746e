package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// ActivityResponse is the serialized audit-trail entry.
type ActivityResponse struct {
	ID         uuid.UUID              `json:"id"`
	ActorID    uuid.UUID              `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uuid.UUID             `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// ActivityPageResponse is a paginated audit-trail listing.
type ActivityPageResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination Pagination         `json:"pagination"`
}

// NewActivityPageResponse builds a paginated listing from models.
func NewActivityPageResponse(entries []models.ActivityLog, page, pageSize int, total int64) ActivityPageResponse {
	items := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, NewActivityResponse(entry))
	}
	return ActivityPageResponse{
		Items:      items,
		Pagination: Pagination{Page: page, PageSize: pageSize, TotalItems: total},
	}
}
