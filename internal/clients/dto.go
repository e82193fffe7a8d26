package clients

import "github.com/impalahub/impalahub/internal/shared"

// ListRequest carries the query parameters of a client listing.
type ListRequest struct {
	Search       string `validate:"max=120"`
	Status       string `validate:"omitempty,oneof=active inactive"`
	BusinessType string `validate:"max=60"`
	Page         int    `validate:"min=0"`
	Limit        int    `validate:"min=0,max=200"`
}

// ListResponse is the paginated listing payload.
type ListResponse struct {
	Data       []Client          `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
	Stale      bool              `json:"stale,omitempty"`
}

// Stats feeds the dashboard stat cards.
type Stats struct {
	Total          int            `json:"total"`
	Active         int            `json:"active"`
	Inactive       int            `json:"inactive"`
	ByBusinessType map[string]int `json:"byBusinessType"`
}
