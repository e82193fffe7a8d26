// Package fetch implements the per-entity fetch orchestrator: a stateful
// controller that owns paginated, filtered reads against the upstream data
// source, debounces rapid filter edits and guarantees that stale responses
// never overwrite fresher state.
package fetch

// FilterState is the single source of truth consulted by every fetch. It is
// mutated only through the orchestrator's own setters.
type FilterState struct {
	Search       string `json:"search,omitempty"`
	Status       string `json:"status,omitempty"`
	BusinessType string `json:"businessType,omitempty"`
	Category     string `json:"category,omitempty"`
	Gender       string `json:"gender,omitempty"`

	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`

	// ShowAllOnSearch toggles between paginated and "all matches in one
	// page" modes; it follows what the response metadata reports.
	ShowAllOnSearch bool `json:"showAllOnSearch"`
}

// Filters is a partial filter update; nil fields stay unchanged.
type Filters struct {
	Search       *string
	Status       *string
	BusinessType *string
	Category     *string
	Gender       *string
	Limit        *int
}

// merge applies the partial update and rewinds to page one, since any filter
// change invalidates the current page position.
func (s *FilterState) merge(partial Filters) {
	if partial.Search != nil {
		s.Search = *partial.Search
	}
	if partial.Status != nil {
		s.Status = *partial.Status
	}
	if partial.BusinessType != nil {
		s.BusinessType = *partial.BusinessType
	}
	if partial.Category != nil {
		s.Category = *partial.Category
	}
	if partial.Gender != nil {
		s.Gender = *partial.Gender
	}
	if partial.Limit != nil && *partial.Limit > 0 {
		s.Limit = *partial.Limit
	}
	s.Page = 1
}

// String pointer helper for building partial filter updates.
func String(v string) *string { return &v }

// Int pointer helper for building partial filter updates.
func Int(v int) *int { return &v }
