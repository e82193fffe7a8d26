package participants

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

// ListRequest carries the query parameters of a participant listing.
type ListRequest struct {
	Search string `validate:"max=120"`
	Status string `validate:"omitempty,oneof=active alumni dropped"`
	Gender string `validate:"omitempty,oneof=male female"`
	Page   int    `validate:"min=0"`
	Limit  int    `validate:"min=0,max=200"`
}

// ListResponse is the paginated listing payload.
type ListResponse struct {
	Data       []Participant     `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
	Stale      bool              `json:"stale,omitempty"`
}

// Stats feeds the participant stat cards.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Alumni  int `json:"alumni"`
	Male    int `json:"male"`
	Female  int `json:"female"`
	Batches int `json:"batches"`
}

// Service owns the participant fetch orchestrator.
type Service struct {
	source   Lister
	orch     *fetch.Orchestrator[Participant]
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService binds an orchestrator to the upstream participant collection.
func NewService(source Lister, logger *slog.Logger, opts ...fetch.Option[Participant]) *Service {
	s := &Service{
		source:   source,
		validate: validator.New(),
		logger:   logger,
	}
	opts = append(opts, fetch.WithLogger[Participant](logger))
	s.orch = fetch.New(s.fetchPage, opts...)
	return s
}

func (s *Service) fetchPage(ctx context.Context, state fetch.FilterState) (fetch.Result[Participant], error) {
	envelope, err := s.source.List(ctx, upstream.EntityParticipants, upstream.Query{
		Page:    state.Page,
		Limit:   state.Limit,
		Search:  state.Search,
		Status:  state.Status,
		Gender:  state.Gender,
		ShowAll: state.Search != "",
	})
	if err != nil {
		return fetch.Result[Participant]{}, err
	}
	records, err := upstream.Decode[Participant](envelope)
	if err != nil {
		return fetch.Result[Participant]{}, err
	}
	page := envelope.Pagination()
	return fetch.Result[Participant]{
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
		Search: fetch.String(strings.TrimSpace(req.Search)),
		Status: fetch.String(req.Status),
		Gender: fetch.String(req.Gender),
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

// Stats counts the registry for the stat cards.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	envelope, err := s.source.ListAll(ctx, upstream.EntityParticipants)
	if err != nil {
		return Stats{}, err
	}
	list, err := upstream.Decode[Participant](envelope)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Total: len(list)}
	batches := map[string]struct{}{}
	for _, p := range list {
		switch strings.ToLower(p.Status) {
		case "active":
			stats.Active++
		case "alumni":
			stats.Alumni++
		}
		switch strings.ToLower(p.Gender) {
		case "male":
			stats.Male++
		case "female":
			stats.Female++
		}
		if p.Batch != "" {
			batches[p.Batch] = struct{}{}
		}
	}
	stats.Batches = len(batches)
	return stats, nil
}

// Stop releases the orchestrator's pending work.
func (s *Service) Stop() { s.orch.Stop() }

func responseFromSnapshot(snap fetch.Snapshot[Participant]) ListResponse {
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
