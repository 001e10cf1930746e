package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role identifies the kind of principal interacting with the API.
type Role string

// Supported roles.
const (
	RoleDean    Role = "dean"
	RoleManager Role = "manager"
	RoleStudent Role = "student"
)

// Valid reports whether the role is one of the supported values.
func (r Role) Valid() bool {
	switch r {
	case RoleDean, RoleManager, RoleStudent:
		return true
	default:
		return false
	}
}

// Status tracks the approval lifecycle of a user account.
type Status string

// Approval lifecycle states. An account starts as registered, becomes pending
// once its approval request is filed, and is settled as approved or rejected.
const (
	StatusRegistered Status = "registered"
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// User represents an authenticated principal: dean's office, company manager or student.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string     `gorm:"size:255;not null" json:"name"`
	Email            string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"size:255;not null" json:"-"`
	Role             Role       `gorm:"size:32;not null" json:"role"`
	Status           Status     `gorm:"size:32;not null" json:"status"`
	TelegramUsername string     `gorm:"size:64" json:"telegram_username,omitempty"`
	CompanyID        *uuid.UUID `gorm:"type:uuid" json:"company_id,omitempty"`
	Company          *Company   `json:"-"`
	// Archived hides the account from all listings. Set when a rejection is
	// processed; never cleared.
	Archived  bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsApproved reports whether the account passed the approval workflow.
func (u User) IsApproved() bool {
	return u.Status == StatusApproved
}
