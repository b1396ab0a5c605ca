package shared

import (
	"net/http"
	"strconv"
)

// ListResponse is the JSON envelope for paginated lists.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewListResponse builds the envelope, never encoding a nil slice.
func NewListResponse[T any](items []T, total int, f ListFilters) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	f = f.Normalize()
	return ListResponse[T]{Items: items, Total: total, Page: f.Page, Limit: f.Limit}
}

// FiltersFromRequest reads page, limit, search, sort and dir query parameters.
func FiltersFromRequest(r *http.Request) ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	f := ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
	if raw := q.Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.CategoryID = &id
		}
	}
	return f.Normalize()
}
