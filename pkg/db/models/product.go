package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a listing owned by an account in the identity service. UserID is
// not a foreign key: the owner lives in a different database.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Title       string          `gorm:"type:varchar(100);not null"`
	Description string          `gorm:"type:varchar(500);not null;default:''"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsAvailable bool            `gorm:"column:is_available;not null"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index:products_user_id_idx"`
	IsDeleted   bool            `gorm:"column:is_deleted;not null;default:false;index"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
