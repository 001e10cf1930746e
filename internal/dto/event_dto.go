package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// EventCreateRequest is the payload for creating an event. Timestamps are
// RFC3339 strings; EndTime and RegistrationDeadline are optional.
type EventCreateRequest struct {
	Title                string `json:"title" validate:"required,min=3,max=255"`
	Description          string `json:"description" validate:"omitempty,max=10000"`
	StartTime            string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime              string `json:"end_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Location             string `json:"location" validate:"required,min=2,max=255"`
	RegistrationDeadline string `json:"registration_deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// EventUpdateRequest is the partial-update payload; only non-nil fields are
// applied, after which the merged event is re-validated as a whole.
type EventUpdateRequest struct {
	Title                *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description          *string `json:"description" validate:"omitempty,max=10000"`
	StartTime            *string `json:"start_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime              *string `json:"end_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Location             *string `json:"location" validate:"omitempty,min=2,max=255"`
	RegistrationDeadline *string `json:"registration_deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// EventResponse is the full serialized representation of an event.
type EventResponse struct {
	ID                   uuid.UUID        `json:"id"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	StartTime            time.Time        `json:"start_time"`
	EndTime              *time.Time       `json:"end_time,omitempty"`
	Location             string           `json:"location"`
	RegistrationDeadline *time.Time       `json:"registration_deadline,omitempty"`
	Company              *CompanyResponse `json:"company,omitempty"`
}

// EventSummaryResponse is the condensed listing representation.
type EventSummaryResponse struct {
	ID        uuid.UUID        `json:"id"`
	Title     string           `json:"title"`
	StartTime time.Time        `json:"start_time"`
	Location  string           `json:"location"`
	Company   *CompanyResponse `json:"company,omitempty"`
}

// NewEventResponse converts a model into its full DTO.
func NewEventResponse(event models.Event) EventResponse {
	response := EventResponse{
		ID:                   event.ID,
		Title:                event.Title,
		Description:          event.Description,
		StartTime:            event.StartTime,
		EndTime:              event.EndTime,
		Location:             event.Location,
		RegistrationDeadline: event.RegistrationDeadline,
	}
	if event.Company != nil {
		company := NewCompanyResponse(*event.Company)
		response.Company = &company
	}
	return response
}

// NewEventSummaryResponse converts a model into its listing DTO.
func NewEventSummaryResponse(event models.Event) EventSummaryResponse {
	summary := EventSummaryResponse{
		ID:        event.ID,
		Title:     event.Title,
		StartTime: event.StartTime,
		Location:  event.Location,
	}
	if event.Company != nil {
		company := NewCompanyResponse(*event.Company)
		summary.Company = &company
	}
	return summary
}

// EventPageResponse is a paginated event listing.
type EventPageResponse struct {
	Items      []EventSummaryResponse `json:"items"`
	Pagination Pagination             `json:"pagination"`
}

// NewEventPageResponse builds a paginated listing from models.
func NewEventPageResponse(events []models.Event, page, pageSize int, total int64) EventPageResponse {
	items := make([]EventSummaryResponse, 0, len(events))
	for _, event := range events {
		items = append(items, NewEventSummaryResponse(event))
	}
	return EventPageResponse{
		Items:      items,
		Pagination: Pagination{Page: page, PageSize: pageSize, TotalItems: total},
	}
}
