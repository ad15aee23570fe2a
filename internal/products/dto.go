package product

import (
	"time"

	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field limits enforced on create and update.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// MaxPrice is the exclusive upper bound for a product price.
var MaxPrice = decimal.NewFromInt(1_000_000)

// ProductDTO represents the product payload returned to clients. Soft-delete
// state is never exposed.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
	UserID      uuid.UUID       `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateProductRequest is the body of the create endpoint. IsAvailable
// defaults to true when omitted.
type CreateProductRequest struct {
	Title       string          `json:"title" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable *bool           `json:"is_available,omitempty"`
}

// UpdateProductRequest overwrites every editable field.
type UpdateProductRequest struct {
	Title       string          `json:"title" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable *bool           `json:"is_available" validate:"required"`
}

// OwnerStatusRequest is the inbound status sync payload sent by the identity service.
type OwnerStatusRequest struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	IsActive *bool     `json:"is_active" validate:"required"`
}

// OwnerStatusResult reports how many listings the sync touched.
type OwnerStatusResult struct {
	UserID   uuid.UUID `json:"user_id"`
	IsActive bool      `json:"is_active"`
	Affected int64     `json:"affected"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		IsAvailable: p.IsAvailable,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out
}
