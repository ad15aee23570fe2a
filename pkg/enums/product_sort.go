package enums

import "strings"

// ProductSortKey names a column the product query engine can order by.
type ProductSortKey string

const (
	ProductSortCreatedAt ProductSortKey = "created_at"
	ProductSortPrice     ProductSortKey = "price"
	ProductSortTitle     ProductSortKey = "title"
)

// Column returns the SQL column backing the sort key.
func (k ProductSortKey) Column() string {
	switch k {
	case ProductSortPrice:
		return "price"
	case ProductSortTitle:
		return "title"
	}
	return "created_at"
}

// String implements fmt.Stringer.
func (k ProductSortKey) String() string {
	return string(k)
}

// ParseProductSortKey is lenient: matching ignores case and separators, and
// anything unrecognised (including empty input) resolves to created_at.
func ParseProductSortKey(value string) ProductSortKey {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("_", "", "-", "", " ", "").Replace(normalized)
	switch normalized {
	case "price":
		return ProductSortPrice
	case "title":
		return ProductSortTitle
	}
	return ProductSortCreatedAt
}

// SortDirection is the ordering applied to the sort key.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// ParseSortDirection defaults to descending for anything but an explicit ascending value.
func ParseSortDirection(value string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asc", "ascending":
		return SortAscending
	}
	return SortDescending
}

// SQL returns the keyword used in ORDER BY clauses.
func (d SortDirection) SQL() string {
	if d == SortAscending {
		return "ASC"
	}
	return "DESC"
}
