package fetch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce is the window within which rapid filter edits collapse into
// a single fetch.
const DefaultDebounce = 600 * time.Millisecond

const defaultLimit = 20

// Result is what a FetchFunc returns: the full record page plus the
// pagination metadata reported (or synthesized) by the data source.
type Result[T any] struct {
	Records    []T
	Page       int
	Limit      int
	Total      int
	TotalPages int
	ShowingAll bool
}

// FetchFunc performs one read against the data source for the given filter
// state. Implementations must honour ctx cancellation.
type FetchFunc[T any] func(ctx context.Context, state FilterState) (Result[T], error)

// Snapshot is a consistent read of the orchestrator's current state.
type Snapshot[T any] struct {
	Records   []T
	Filters   FilterState
	Loading   bool
	Err       error
	LastFetch time.Time
}

// Orchestrator serializes fetches for one entity. Every issued fetch carries
// a monotonically increasing generation; a completion whose generation is no
// longer the latest is discarded wholesale, so the newest request always
// supersedes the oldest regardless of completion order.
type Orchestrator[T any] struct {
	fetch    FetchFunc[T]
	debounce time.Duration
	logger   *slog.Logger

	mu         sync.Mutex
	state      FilterState
	records    []T
	loading    bool
	err        error
	lastFetch  time.Time
	generation uint64
	cancel     context.CancelFunc
	timer      *time.Timer
}

// Option customises orchestrator construction.
type Option[T any] func(*Orchestrator[T])

// WithDebounce overrides the debounce window. Zero disables debouncing,
// which is what the tests use.
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(o *Orchestrator[T]) { o.debounce = d }
}

// WithLogger attaches a structured logger for fetch failures.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(o *Orchestrator[T]) { o.logger = logger }
}

// WithLimit sets the initial page size.
func WithLimit[T any](limit int) Option[T] {
	return func(o *Orchestrator[T]) {
		if limit > 0 {
			o.state.Limit = limit
		}
	}
}

// New constructs an orchestrator around the given fetch function.
func New[T any](fetch FetchFunc[T], opts ...Option[T]) *Orchestrator[T] {
	o := &Orchestrator[T]{
		fetch:    fetch,
		debounce: DefaultDebounce,
		state:    FilterState{Page: 1, Limit: defaultLimit},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// UpdateFilters merges a partial filter update and schedules a debounced
// fetch at page one. A previously scheduled fetch is cancelled; repeated
// rapid edits collapse into the single trailing fetch.
func (o *Orchestrator[T]) UpdateFilters(partial Filters) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.merge(partial)
	if o.timer != nil {
		o.timer.Stop()
	}
	if o.debounce <= 0 {
		o.timer = nil
		go o.Fetch(context.Background())
		return
	}
	o.timer = time.AfterFunc(o.debounce, func() {
		o.Fetch(context.Background())
	})
}

// ApplyFilters merges the partial update and fetches immediately, bypassing
// the debounce window. Used by request-scoped callers that need the result
// synchronously.
func (o *Orchestrator[T]) ApplyFilters(ctx context.Context, partial Filters) (Snapshot[T], error) {
	o.mu.Lock()
	o.state.merge(partial)
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.mu.Unlock()
	return o.runFetch(ctx)
}

// Navigate merges a partial filter update and jumps to the requested page in
// a single immediate fetch. Page values below two keep the page-one reset
// that merge applies.
func (o *Orchestrator[T]) Navigate(ctx context.Context, partial Filters, page int) (Snapshot[T], error) {
	o.mu.Lock()
	o.state.merge(partial)
	if page > 1 {
		o.state.Page = page
	}
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.mu.Unlock()
	return o.runFetch(ctx)
}

// Search is shorthand for applying a search term.
func (o *Orchestrator[T]) Search(ctx context.Context, query string) (Snapshot[T], error) {
	return o.ApplyFilters(ctx, Filters{Search: String(query)})
}

// ChangePage moves to the requested page without touching filters.
func (o *Orchestrator[T]) ChangePage(ctx context.Context, page int) (Snapshot[T], error) {
	o.mu.Lock()
	if page < 1 {
		page = 1
	}
	o.state.Page = page
	o.mu.Unlock()
	return o.runFetch(ctx)
}

// ClearFilters resets every filter and refetches the first page.
func (o *Orchestrator[T]) ClearFilters(ctx context.Context) (Snapshot[T], error) {
	o.mu.Lock()
	limit := o.state.Limit
	o.state = FilterState{Page: 1, Limit: limit}
	o.mu.Unlock()
	return o.runFetch(ctx)
}

// Refresh re-runs the fetch with the current filter state.
func (o *Orchestrator[T]) Refresh(ctx context.Context) (Snapshot[T], error) {
	return o.runFetch(ctx)
}

// Fetch issues a fetch for the current filter state, superseding any fetch
// still in flight. Safe for concurrent use; only the newest generation may
// commit its result.
func (o *Orchestrator[T]) Fetch(ctx context.Context) {
	_, _ = o.runFetch(ctx)
}

func (o *Orchestrator[T]) runFetch(ctx context.Context) (Snapshot[T], error) {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	if o.cancel != nil {
		// Abort the superseded in-flight request.
		o.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.loading = true
	state := o.state
	o.mu.Unlock()

	result, err := o.fetch(fetchCtx, state)
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		// A newer request was issued while this one ran; its result wins
		// no matter which finished first.
		return o.snapshotLocked(), nil
	}
	o.loading = false
	o.cancel = nil
	switch {
	case err == nil:
		o.records = result.Records
		o.err = nil
		o.lastFetch = time.Now()
		o.applyPaginationLocked(result)
	case errors.Is(err, context.Canceled):
		// Supersession is the expected outcome, not a failure.
	default:
		// Keep the last-known-good records; the caller decides how to
		// surface the error.
		o.err = err
		if o.logger != nil {
			o.logger.Warn("fetch failed", slog.Any("error", err))
		}
		return o.snapshotLocked(), err
	}
	return o.snapshotLocked(), nil
}

func (o *Orchestrator[T]) applyPaginationLocked(result Result[T]) {
	if result.Page > 0 {
		o.state.Page = result.Page
	}
	if result.Limit > 0 {
		o.state.Limit = result.Limit
	}
	o.state.Total = result.Total
	o.state.TotalPages = result.TotalPages
	o.state.ShowAllOnSearch = result.ShowingAll
}

// Snapshot returns a consistent copy of the current records and state.
func (o *Orchestrator[T]) Snapshot() Snapshot[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator[T]) snapshotLocked() Snapshot[T] {
	records := make([]T, len(o.records))
	copy(records, o.records)
	return Snapshot[T]{
		Records:   records,
		Filters:   o.state,
		Loading:   o.loading,
		Err:       o.err,
		LastFetch: o.lastFetch,
	}
}

// Stop cancels any pending debounced fetch and aborts the in-flight request.
func (o *Orchestrator[T]) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}
