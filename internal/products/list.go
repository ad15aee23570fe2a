package product

import (
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"github.com/angelmondragon/listingz-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter describes the supported filter knobs for the browse endpoint.
// OwnerID is always overwritten with the caller before the query runs.
type ListFilter struct {
	OwnerID     uuid.UUID
	Search      string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	IsAvailable *bool
	SortBy      enums.ProductSortKey
	SortDir     enums.SortDirection
	Page        int
	PageSize    int
}

// Params returns the clamped pagination window.
func (f ListFilter) Params() pagination.Params {
	return pagination.Normalize(f.Page, f.PageSize)
}

// ListResult is one page of products.
type ListResult = pagination.Result[ProductDTO]
