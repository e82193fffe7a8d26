package clients

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

// Service owns the client fetch orchestrator and answers list and stat reads.
type Service struct {
	source   Lister
	orch     *fetch.Orchestrator[Client]
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService binds an orchestrator to the upstream client collection.
func NewService(source Lister, logger *slog.Logger, opts ...fetch.Option[Client]) *Service {
	s := &Service{
		source:   source,
		validate: validator.New(),
		logger:   logger,
	}
	opts = append(opts, fetch.WithLogger[Client](logger))
	s.orch = fetch.New(s.fetchPage, opts...)
	return s
}

// fetchPage is the orchestrator's fetch function: one upstream read per
// filter state, with show-all engaged whenever a search term is active.
func (s *Service) fetchPage(ctx context.Context, state fetch.FilterState) (fetch.Result[Client], error) {
	envelope, err := s.source.List(ctx, upstream.EntityClients, upstream.Query{
		Page:         state.Page,
		Limit:        state.Limit,
		Search:       state.Search,
		Status:       state.Status,
		BusinessType: state.BusinessType,
		ShowAll:      state.Search != "",
	})
	if err != nil {
		return fetch.Result[Client]{}, err
	}
	records, err := upstream.Decode[Client](envelope)
	if err != nil {
		return fetch.Result[Client]{}, err
	}
	page := envelope.Pagination()
	return fetch.Result[Client]{
		Records:    records,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		ShowingAll: page.IsShowAllMode || page.ShowingAllResults,
	}, nil
}

// List validates the request and resolves it through the orchestrator. On
// upstream failure the last-known-good records are returned marked stale,
// alongside the error, so the caller can render data with an error banner.
func (s *Service) List(ctx context.Context, req ListRequest) (ListResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return ListResponse{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	partial := fetch.Filters{
		Search:       fetch.String(strings.TrimSpace(req.Search)),
		Status:       fetch.String(req.Status),
		BusinessType: fetch.String(req.BusinessType),
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

// Refresh re-fetches the current page.
func (s *Service) Refresh(ctx context.Context) (ListResponse, error) {
	snap, err := s.orch.Refresh(ctx)
	return responseFromSnapshot(snap), err
}

// Stats counts the full roster for the stat cards.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	envelope, err := s.source.ListAll(ctx, upstream.EntityClients)
	if err != nil {
		return Stats{}, err
	}
	list, err := upstream.Decode[Client](envelope)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Total: len(list), ByBusinessType: map[string]int{}}
	for _, client := range list {
		switch strings.ToLower(client.Status) {
		case "active":
			stats.Active++
		case "inactive":
			stats.Inactive++
		}
		if client.BusinessType != "" {
			stats.ByBusinessType[client.BusinessType]++
		}
	}
	return stats, nil
}

// Stop releases the orchestrator's pending work.
func (s *Service) Stop() { s.orch.Stop() }

func responseFromSnapshot(snap fetch.Snapshot[Client]) ListResponse {
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
