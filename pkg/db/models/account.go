package models

import (
	"time"

	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the identity service's user record.
type Account struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name                string              `gorm:"type:varchar(100);not null"`
	Email               string              `gorm:"type:varchar(255);not null;uniqueIndex:accounts_email_key"`
	PasswordHash        string              `gorm:"column:password_hash;type:text;not null"`
	Role                enums.AccountRole   `gorm:"type:varchar(16);not null;default:user"`
	Status              enums.AccountStatus `gorm:"type:varchar(16);not null;default:active;index"`
	IsEmailConfirmed    bool                `gorm:"column:is_email_confirmed;not null;default:false"`
	ConfirmationToken   *string             `gorm:"type:varchar(128);index"`
	ResetToken          *string             `gorm:"type:varchar(128);index"`
	ResetTokenExpiresAt *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (Account) TableName() string { return "accounts" }

// BeforeCreate assigns identifiers and defaults that both dialects must agree on.
func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Role == "" {
		a.Role = enums.AccountRoleUser
	}
	if a.Status == "" {
		a.Status = enums.AccountStatusActive
	}
	return nil
}

// IsActive reports whether the account may authenticate.
func (a Account) IsActive() bool {
	return a.Status.IsActive()
}
