package programs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/impalahub/impalahub/internal/fetch"
	"github.com/impalahub/impalahub/internal/platform/httpx"
	"github.com/impalahub/impalahub/internal/shared"
	"github.com/impalahub/impalahub/internal/upstream"
)

// Lister is the upstream surface the service needs.
type Lister interface {
	List(ctx context.Context, entity upstream.Entity, query upstream.Query) (upstream.Envelope, error)
	ListAll(ctx context.Context, entity upstream.Entity) (upstream.Envelope, error)
}

// ListRequest carries the query parameters of a program listing.
type ListRequest struct {
	Search   string `validate:"max=120"`
	Status   string `validate:"omitempty,oneof=active inactive upcoming finished"`
	Category string `validate:"max=60"`
	Page     int    `validate:"min=0"`
	Limit    int    `validate:"min=0,max=200"`
}

// ListResponse is the paginated listing payload.
type ListResponse struct {
	Data       []Program         `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
	Stale      bool              `json:"stale,omitempty"`
}

// Stats feeds the program stat cards, revenue included.
type Stats struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	TotalRevenue int64          `json:"totalRevenue"`
	Priced       int            `json:"priced"`
	ByCategory   map[string]int `json:"byCategory"`
}

// Service owns the program fetch orchestrator.
type Service struct {
	source   Lister
	orch     *fetch.Orchestrator[Program]
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService binds an orchestrator to the upstream program collection.
func NewService(source Lister, logger *slog.Logger, opts ...fetch.Option[Program]) *Service {
	s := &Service{
		source:   source,
		validate: validator.New(),
		logger:   logger,
	}
	opts = append(opts, fetch.WithLogger[Program](logger))
	s.orch = fetch.New(s.fetchPage, opts...)
	return s
}

func (s *Service) fetchPage(ctx context.Context, state fetch.FilterState) (fetch.Result[Program], error) {
	envelope, err := s.source.List(ctx, upstream.EntityPrograms, upstream.Query{
		Page:     state.Page,
		Limit:    state.Limit,
		Search:   state.Search,
		Status:   state.Status,
		Category: state.Category,
		ShowAll:  state.Search != "",
	})
	if err != nil {
		return fetch.Result[Program]{}, err
	}
	records, err := upstream.Decode[Program](envelope)
	if err != nil {
		return fetch.Result[Program]{}, err
	}
	page := envelope.Pagination()
	return fetch.Result[Program]{
		Records:    records,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		ShowingAll: page.IsShowAllMode || page.ShowingAllResults,
	}, nil
}

// List validates and resolves a listing through the orchestrator, keeping
// stale data available on upstream failure.
func (s *Service) List(ctx context.Context, req ListRequest) (ListResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return ListResponse{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	partial := fetch.Filters{
		Search:   fetch.String(strings.TrimSpace(req.Search)),
		Status:   fetch.String(req.Status),
		Category: fetch.String(req.Category),
	}
	if req.Limit > 0 {
		partial.Limit = fetch.Int(req.Limit)
	}
	snap, err := s.orch.Navigate(ctx, partial, req.Page)
	resp := responseFromSnapshot(snap)
	if err != nil {
		resp.Stale = len(resp.Data) > 0
		return resp, err
	}
	return resp, nil
}

// Stats totals the catalogue, attributing revenue only to priced programs.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	envelope, err := s.source.ListAll(ctx, upstream.EntityPrograms)
	if err != nil {
		return Stats{}, err
	}
	list, err := upstream.Decode[Program](envelope)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Total: len(list), ByCategory: map[string]int{}}
	for _, program := range list {
		if strings.EqualFold(program.Status, "active") {
			stats.Active++
		}
		if amount := program.PriceAmount(); amount > 0 {
			stats.TotalRevenue += amount
			stats.Priced++
		}
		if program.Category != "" {
			stats.ByCategory[program.Category]++
		}
	}
	return stats, nil
}

// Stop releases the orchestrator's pending work.
func (s *Service) Stop() { s.orch.Stop() }

func responseFromSnapshot(snap fetch.Snapshot[Program]) ListResponse {
	pagination := shared.Pagination{
		Page:       snap.Filters.Page,
		Limit:      snap.Filters.Limit,
		Total:      snap.Filters.Total,
		TotalPages: snap.Filters.TotalPages,
		ShowingAll: snap.Filters.ShowAllOnSearch,
	}
	if pagination.Page == 0 {
		pagination = shared.NewPagination(1, pagination.Limit, pagination.Total)
	}
	return ListResponse{Data: snap.Records, Pagination: pagination}
}
