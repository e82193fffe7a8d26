// Package upstream implements the REST client for the backend that owns the
// actual entity data. The dashboard service never talks to a database; every
// record list comes through this client.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/impalahub/impalahub/internal/platform/httpx"
)

// DefaultTimeout is the fetch ceiling; exceeding it is treated identically to
// a network failure.
const DefaultTimeout = 10 * time.Second

// Entity names the upstream collections the dashboard reads.
type Entity string

// Upstream collections.
const (
	EntityClients      Entity = "clients"
	EntityPrograms     Entity = "programs"
	EntityParticipants Entity = "participants"
)

// Query carries the paginated/filtered read parameters.
type Query struct {
	Page         int
	Limit        int
	Search       string
	Status       string
	BusinessType string
	Category     string
	Gender       string
	ShowAll      bool
}

// Pagination mirrors the upstream response metadata.
type Pagination struct {
	Page              int  `json:"page"`
	Limit             int  `json:"limit"`
	Total             int  `json:"total"`
	TotalPages        int  `json:"totalPages"`
	IsShowAllMode     bool `json:"isShowAllMode"`
	ShowingAllResults bool `json:"showingAllResults"`
}

// Metadata wraps the pagination block; upstream omits it in some deployments.
type Metadata struct {
	Pagination *Pagination `json:"pagination"`
}

// Envelope is the upstream list response shape.
type Envelope struct {
	Data     json.RawMessage `json:"data"`
	Metadata *Metadata       `json:"metadata"`
}

// Pagination returns the response pagination, synthesizing a single-page
// envelope from the data length when upstream sent no metadata.
func (e Envelope) Pagination() Pagination {
	if e.Metadata != nil && e.Metadata.Pagination != nil {
		return *e.Metadata.Pagination
	}
	count := e.Count()
	limit := count
	if limit == 0 {
		limit = 1
	}
	return Pagination{Page: 1, Limit: limit, Total: count, TotalPages: 1}
}

// Count reports how many records the data payload holds.
func (e Envelope) Count() int {
	var items []json.RawMessage
	if err := json.Unmarshal(e.Data, &items); err != nil {
		return 0
	}
	return len(items)
}

// Decode unmarshals the data payload into a typed record slice.
func Decode[T any](e Envelope) ([]T, error) {
	if len(e.Data) == 0 {
		return nil, nil
	}
	var records []T
	if err := json.Unmarshal(e.Data, &records); err != nil {
		return nil, fmt.Errorf("upstream: decode data: %w", err)
	}
	return records, nil
}

// Client issues paginated, filtered reads against the upstream REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New constructs a Client for the given base URL. A zero timeout falls back
// to DefaultTimeout.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// List fetches one page (or the full match set in show-all mode) of the given
// entity. Context cancellation passes through unchanged so callers can tell
// supersession apart from genuine failure.
func (c *Client) List(ctx context.Context, entity Entity, query Query) (Envelope, error) {
	endpoint, err := c.buildURL(entity, query)
	if err != nil {
		return Envelope{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Envelope{}, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return Envelope{}, fmt.Errorf("%w: %s %s", httpx.ErrNotFound, entity, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Envelope{}, fmt.Errorf("%w: %s returned status %d", httpx.ErrUpstream, entity, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: read body: %v", httpx.ErrUpstream, err)
	}
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("%w: decode envelope: %v", httpx.ErrUpstream, err)
	}
	if envelope.Data == nil {
		// Some endpoints answer with a bare array instead of an envelope.
		var bare []json.RawMessage
		if err := json.Unmarshal(body, &bare); err == nil {
			envelope.Data = json.RawMessage(body)
		}
	}
	return envelope, nil
}

// ListAll fetches the full record set of an entity in show-all mode; the
// aggregation pipeline consumes this to compute year summaries.
func (c *Client) ListAll(ctx context.Context, entity Entity) (Envelope, error) {
	return c.List(ctx, entity, Query{Page: 1, ShowAll: true})
}

func (c *Client) buildURL(entity Entity, query Query) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("upstream: parse base url: %w", err)
	}
	endpoint := base.JoinPath("api", string(entity))
	values := endpoint.Query()
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Search != "" {
		values.Set("search", query.Search)
	}
	if query.Status != "" {
		values.Set("status", query.Status)
	}
	if query.BusinessType != "" {
		values.Set("businessType", query.BusinessType)
	}
	if query.Category != "" {
		values.Set("category", query.Category)
	}
	if query.Gender != "" {
		values.Set("gender", query.Gender)
	}
	if query.ShowAll {
		values.Set("showAll", "true")
	}
	endpoint.RawQuery = values.Encode()
	return endpoint.String(), nil
}

// classifyTransportError maps transport failures onto the service error
// taxonomy while letting supersession (context cancellation) through intact.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &urlErr) && urlErr.Timeout()) {
		return fmt.Errorf("%w: %v", httpx.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
}
