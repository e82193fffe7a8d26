package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type row struct {
	Name string
}

func pageFor(state FilterState, names ...string) Result[row] {
	records := make([]row, 0, len(names))
	for _, name := range names {
		records = append(records, row{Name: name})
	}
	return Result[row]{
		Records:    records,
		Page:       state.Page,
		Limit:      state.Limit,
		Total:      len(names),
		TotalPages: 1,
	}
}

func TestSupersessionNewestWins(t *testing.T) {
	release := make(chan struct{})
	fetcher := func(ctx context.Context, state FilterState) (Result[row], error) {
		if state.Search == "slow" {
			// Simulate a laggy response that ignores its abort signal and
			// resolves after the superseding request.
			<-release
			return pageFor(state, "stale-a"), nil
		}
		return pageFor(state, "fresh-b"), nil
	}
	o := New(fetcher, WithDebounce[row](0))

	done := make(chan Snapshot[row], 1)
	go func() {
		snap, _ := o.Search(context.Background(), "slow")
		done <- snap
	}()
	// Let the slow fetch acquire its generation before superseding it.
	time.Sleep(20 * time.Millisecond)

	snap, err := o.Search(context.Background(), "fast")
	require.NoError(t, err)
	require.Equal(t, []row{{Name: "fresh-b"}}, snap.Records)

	close(release)
	<-done

	// The late completion of the superseded request must not overwrite state.
	final := o.Snapshot()
	require.Equal(t, []row{{Name: "fresh-b"}}, final.Records)
	require.Equal(t, "fast", final.Filters.Search)
}

func TestSupersededFetchHonoursAbort(t *testing.T) {
	var aborted atomic.Bool
	fetcher := func(ctx context.Context, state FilterState) (Result[row], error) {
		if state.Search == "slow" {
			<-ctx.Done()
			aborted.Store(true)
			return Result[row]{}, ctx.Err()
		}
		return pageFor(state, "winner"), nil
	}
	o := New(fetcher, WithDebounce[row](0))

	go o.Fetch(context.Background())
	done := make(chan struct{})
	go func() {
		_, _ = o.Search(context.Background(), "slow")
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)

	snap, err := o.Search(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []row{{Name: "winner"}}, snap.Records)
	<-done
	require.True(t, aborted.Load())
	// Abort is supersession, not failure: no error surfaces.
	require.NoError(t, o.Snapshot().Err)
}

func TestDebounceCollapsesRapidEdits(t *testing.T) {
	var calls atomic.Int32
	fetcher := func(ctx context.Context, state FilterState) (Result[row], error) {
		calls.Add(1)
		return pageFor(state, state.Search), nil
	}
	o := New(fetcher, WithDebounce[row](40*time.Millisecond))

	for _, term := range []string{"k", "ko", "kop", "kopi"} {
		o.UpdateFilters(Filters{Search: String(term)})
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	require.Equal(t, int32(1), calls.Load())
	snap := o.Snapshot()
	require.Equal(t, "kopi", snap.Filters.Search)
	require.Equal(t, 1, snap.Filters.Page)
}

func TestFilterChangeResetsPage(t *testing.T) {
	fetcher := func(ctx context.Context, state FilterState) (Result[row], error) {
		return pageFor(state, "x"), nil
	}
	o := New(fetcher, WithDebounce[row](0))

	_, err := o.ChangePage(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, 4, o.Snapshot().Filters.Page)

	snap, err := o.ApplyFilters(context.Background(), Filters{Status: String("active")})
	require.NoError(t, err)
	require.Equal(t, 1, snap.Filters.Page)
	require.Equal(t, "active", snap.Filters.Status)
}

func TestFailurePreservesLastKnownGood(t *testing.T) {
	var fail atomic.Bool
	boom := errors.New("upstream down")
	fetcher := func(ctx context.Context, state FilterState) (Result[row], error) {
		if fail.Load() {
			return Result[row]{}, boom
		}
		return pageFor(state, "good"), nil
	}
	o := New(fetcher, WithDebounce[row](0))

	snap, err := o.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)

	fail.Store(true)
	snap, err = o.Refresh(context.Background())
	require.ErrorIs(t, err, boom)
	// Stale-but-valid data stays available for the presentation layer.
	require.Equal(t, []row{{Name: "good"}}, snap.Records)
	require.ErrorIs(t, snap.Err, boom)

	fail.Store(false)
	snap, err = o.Refresh(context.Background())
	require.NoError(t, err)
	require.NoError(t, snap.Err)
}

func TestClearFiltersKeepsLimit(t *testing.T) {
	fetcher := func(ctx context.Context, state FilterState) (Result[row], error) {
		return pageFor(state), nil
	}
	o := New(fetcher, WithDebounce[row](0), WithLimit[row](50))

	_, err := o.ApplyFilters(context.Background(), Filters{
		Search: String("impala"),
		Gender: String("female"),
	})
	require.NoError(t, err)

	snap, err := o.ClearFilters(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap.Filters.Search)
	require.Empty(t, snap.Filters.Gender)
	require.Equal(t, 50, snap.Filters.Limit)
}

func TestShowAllModeFollowsResponse(t *testing.T) {
	fetcher := func(ctx context.Context, state FilterState) (Result[row], error) {
		result := pageFor(state, "a", "b", "c")
		result.ShowingAll = state.Search != ""
		return result, nil
	}
	o := New(fetcher, WithDebounce[row](0))

	snap, err := o.Search(context.Background(), "b")
	require.NoError(t, err)
	require.True(t, snap.Filters.ShowAllOnSearch)

	snap, err = o.Search(context.Background(), "")
	require.NoError(t, err)
	require.False(t, snap.Filters.ShowAllOnSearch)
}
