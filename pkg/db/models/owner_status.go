package models

import (
	"time"

	"github.com/google/uuid"
)

// OwnerStatus is the listings service's copy of an owner's account status,
// written by the inbound status sync. No row means the owner was never
// deactivated.
type OwnerStatus struct {
	OwnerID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (OwnerStatus) TableName() string { return "owner_statuses" }
