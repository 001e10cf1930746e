package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registration links a student to an event. The (student, event) pair is
// unique: unregistering stamps UnregisteredAt and re-registering reactivates
// the same row instead of inserting a duplicate.
type Registration struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_student_event" json:"student_id"`
	Student        *User      `json:"-"`
	EventID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_student_event" json:"event_id"`
	Event          *Event     `json:"-"`
	RegisteredAt   time.Time  `gorm:"not null" json:"registered_at"`
	UnregisteredAt *time.Time `json:"unregistered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (r *Registration) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Active reports whether the registration is currently in effect.
func (r Registration) Active() bool {
	return r.UnregisteredAt == nil
}
