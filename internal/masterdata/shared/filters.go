package shared

import "time"

// Pagination defaults.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ListFilters represents standard list filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Entity specific filters
	CategoryID   *int64
	CreatedSince *time.Time
}

// Normalize clamps paging to sane bounds.
func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// Offset returns the row offset for the current page.
func (f ListFilters) Offset() int {
	f = f.Normalize()
	return (f.Page - 1) * f.Limit
}

// Direction returns the SQL sort direction.
func (f ListFilters) Direction() string {
	if f.SortDir == "desc" {
		return "DESC"
	}
	return "ASC"
}
