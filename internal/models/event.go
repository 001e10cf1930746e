package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a company event students can register for.
type Event struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title                string         `gorm:"size:255;not null" json:"title"`
	Description          string         `gorm:"type:text" json:"description"`
	StartTime            time.Time      `gorm:"not null" json:"start_time"`
	EndTime              *time.Time     `json:"end_time,omitempty"`
	Location             string         `gorm:"size:255;not null" json:"location"`
	RegistrationDeadline *time.Time     `json:"registration_deadline,omitempty"`
	ManagerID            uuid.UUID      `gorm:"type:uuid;not null" json:"manager_id"`
	Manager              *User          `json:"-"`
	CompanyID            uuid.UUID      `gorm:"type:uuid;not null" json:"company_id"`
	Company              *Company       `json:"-"`
	Registrations        []Registration `gorm:"foreignKey:EventID" json:"-"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// RegistrationClosed reports whether the registration deadline has passed.
func (e Event) RegistrationClosed(reference time.Time) bool {
	return e.RegistrationDeadline != nil && reference.After(*e.RegistrationDeadline)
}

// Ended reports whether the event has already finished.
func (e Event) Ended(reference time.Time) bool {
	return e.EndTime != nil && reference.After(*e.EndTime)
}

// Started reports whether the event has already begun.
func (e Event) Started(reference time.Time) bool {
	return reference.After(e.StartTime)
}
