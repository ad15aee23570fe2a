package product

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func mustCreateTestProduct(t *testing.T, r *Repository, ownerID uuid.UUID, title string, price int64, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:       title,
		Description: title + " description",
		Price:       decimal.NewFromInt(price),
		IsAvailable: true,
		UserID:      ownerID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if _, err := r.Create(context.Background(), product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func boolPtr(v bool) *bool { return &v }

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func titles(items []ProductDTO) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}
