package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/impalahub/impalahub/internal/fetch"
	"github.com/impalahub/impalahub/internal/platform/httpx"
	"github.com/impalahub/impalahub/internal/upstream"
)

type fakeLister struct {
	mu      sync.Mutex
	queries []upstream.Query
	rows    []Client
	err     error
}

func (f *fakeLister) List(ctx context.Context, entity upstream.Entity, query upstream.Query) (upstream.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return upstream.Envelope{}, f.err
	}
	raw, err := json.Marshal(f.rows)
	if err != nil {
		return upstream.Envelope{}, err
	}
	return upstream.Envelope{
		Data: raw,
		Metadata: &upstream.Metadata{Pagination: &upstream.Pagination{
			Page: query.Page, Limit: query.Limit, Total: len(f.rows), TotalPages: 1,
			IsShowAllMode: query.ShowAll,
		}},
	}, nil
}

func (f *fakeLister) ListAll(ctx context.Context, entity upstream.Entity) (upstream.Envelope, error) {
	return f.List(ctx, entity, upstream.Query{ShowAll: true})
}

func (f *fakeLister) lastQuery(t *testing.T) upstream.Query {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		t.Fatal("no upstream query recorded")
	}
	return f.queries[len(f.queries)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListMapsFiltersToUpstreamQuery(t *testing.T) {
	source := &fakeLister{rows: []Client{{ID: "c1", Name: "Kopi Kenangan", Status: "active"}}}
	svc := NewService(source, testLogger(), fetch.WithDebounce[Client](time.Millisecond))
	defer svc.Stop()

	resp, err := svc.List(context.Background(), ListRequest{Status: "active", BusinessType: "fnb", Page: 2, Limit: 25})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	query := source.lastQuery(t)
	if query.Page != 2 || query.Limit != 25 || query.Status != "active" || query.BusinessType != "fnb" {
		t.Fatalf("unexpected upstream query: %+v", query)
	}
	if query.ShowAll {
		t.Fatal("show-all engaged without a search term")
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "c1" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
	if resp.Pagination.Page != 2 || resp.Pagination.Total != 1 {
		t.Fatalf("unexpected pagination: %+v", resp.Pagination)
	}
}

func TestListSearchEngagesShowAll(t *testing.T) {
	source := &fakeLister{rows: []Client{{ID: "c1"}}}
	svc := NewService(source, testLogger(), fetch.WithDebounce[Client](time.Millisecond))
	defer svc.Stop()

	if _, err := svc.List(context.Background(), ListRequest{Search: "kopi"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	query := source.lastQuery(t)
	if !query.ShowAll || query.Search != "kopi" {
		t.Fatalf("search query = %+v, want show-all with term", query)
	}
}

func TestListRejectsInvalidStatus(t *testing.T) {
	svc := NewService(&fakeLister{}, testLogger())
	defer svc.Stop()

	_, err := svc.List(context.Background(), ListRequest{Status: "archived"})
	if !errors.Is(err, httpx.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestListFailureKeepsLastKnownGood(t *testing.T) {
	source := &fakeLister{rows: []Client{{ID: "c1", Name: "Warung Sehat"}}}
	svc := NewService(source, testLogger(), fetch.WithDebounce[Client](time.Millisecond))
	defer svc.Stop()

	if _, err := svc.List(context.Background(), ListRequest{Page: 1}); err != nil {
		t.Fatalf("seed list: %v", err)
	}
	source.mu.Lock()
	source.err = fmt.Errorf("%w: 502", httpx.ErrUpstream)
	source.mu.Unlock()

	resp, err := svc.List(context.Background(), ListRequest{Page: 2})
	if err == nil {
		t.Fatal("expected upstream error")
	}
	if !resp.Stale {
		t.Fatal("response not marked stale")
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "c1" {
		t.Fatalf("stale data lost: %+v", resp.Data)
	}
}

func TestStatsCountsRoster(t *testing.T) {
	source := &fakeLister{rows: []Client{
		{ID: "c1", Status: "active", BusinessType: "fnb"},
		{ID: "c2", Status: "active", BusinessType: "retail"},
		{ID: "c3", Status: "inactive", BusinessType: "fnb"},
	}}
	svc := NewService(source, testLogger())
	defer svc.Stop()

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Active != 2 || stats.Inactive != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ByBusinessType["fnb"] != 2 {
		t.Fatalf("byBusinessType = %+v", stats.ByBusinessType)
	}
}

func TestHandlerListServesJSON(t *testing.T) {
	source := &fakeLister{rows: []Client{{ID: "c1", Name: "Kopi Kenangan"}}}
	svc := NewService(source, testLogger(), fetch.WithDebounce[Client](time.Millisecond))
	defer svc.Stop()
	handler := NewHandler(testLogger(), svc)

	router := chi.NewRouter()
	router.Route("/api/clients", handler.MountRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/clients?status=active&page=1", nil))

	if rr.Code != 200 {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp ListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "c1" {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}
