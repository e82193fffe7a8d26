package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	ShowingAll bool `json:"showingAllResults,omitempty"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, limit, total int) Pagination {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// ShowAll marks the pagination as a single page holding every match.
func ShowAll(total int) Pagination {
	limit := total
	if limit <= 0 {
		limit = 1
	}
	return Pagination{Page: 1, Limit: limit, Total: total, TotalPages: 1, ShowingAll: true}
}
