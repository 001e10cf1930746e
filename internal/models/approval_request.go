package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalRequest is the pending-membership record created when a user
// registers. Exactly one exists per user; once processed it is terminal.
type ApprovalRequest struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User            *User     `json:"-"`
	Processed       bool      `gorm:"not null;default:false" json:"processed"`
	RejectionReason *string   `gorm:"size:512" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (r *ApprovalRequest) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
