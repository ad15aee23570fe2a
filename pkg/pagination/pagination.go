package pagination

const (
	// DefaultPage is used when the requested page is missing or below one.
	DefaultPage = 1
	// DefaultPageSize is the standard page size when a size is not provided.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows any page can request.
	MaxPageSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps page and size into the supported range: page < 1 becomes 1,
// size < 1 becomes DefaultPageSize and size > MaxPageSize becomes MaxPageSize.
func Normalize(page, pageSize int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Params{Page: page, PageSize: pageSize}
}

// Offset returns the number of rows to skip for the page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Result is one page of items plus the total count of matching rows.
type Result[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// NewResult assembles a page and derives the page count.
func NewResult[T any](items []T, params Params, total int64) Result[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if params.PageSize > 0 && total > 0 {
		pages = int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	}
	return Result[T]{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: pages,
	}
}

// Map converts the items of a page while keeping its metadata.
func Map[T, U any](in Result[T], fn func(T) U) Result[U] {
	out := make([]U, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, fn(item))
	}
	return Result[U]{
		Items:      out,
		Page:       in.Page,
		PageSize:   in.PageSize,
		TotalCount: in.TotalCount,
		TotalPages: in.TotalPages,
	}
}
