package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Workflow actions recorded in the activity log.
const (
	ActivityUserRegistered    = "user.registered"
	ActivityUserApproved      = "user.approved"
	ActivityUserRejected      = "user.rejected"
	ActivityEventCreated      = "event.created"
	ActivityEventUpdated      = "event.updated"
	ActivityEventDeleted      = "event.deleted"
	ActivityEventRegistered   = "event.registered"
	ActivityEventUnregistered = "event.unregistered"
	ActivityCompanyCreated    = "company.created"
	ActivityCompanyUpdated    = "company.updated"
	ActivityCompanyDeleted    = "company.deleted"
	ActivityProfileUpdated    = "profile.updated"
)

// ActivityLog captures auditable workflow transitions: approval decisions,
// event mutations and registration cycles.
type ActivityLog struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    uuid.UUID         `gorm:"type:uuid;not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uuid.UUID        `gorm:"type:uuid" json:"entity_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (a *ActivityLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
