// Package dashboard computes chart-ready analytics for the admin dashboard:
// year summaries per metric, the cross-metric overview and the stat cards.
// Raw record lists come from upstream; the aggregation itself is pure and
// lives in internal/aggregate.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/impalahub/impalahub/internal/aggregate"
	"github.com/impalahub/impalahub/internal/platform/httpx"
	"github.com/impalahub/impalahub/internal/programs"
	"github.com/impalahub/impalahub/internal/upstream"
)

var yearRegex = regexp.MustCompile(`^\d{4}$`)

// Lister is the upstream surface the dashboard needs: full record sets only,
// the pagination of the entity listings does not apply here.
type Lister interface {
	ListAll(ctx context.Context, entity upstream.Entity) (upstream.Envelope, error)
}

// SummaryResult is a metric summary plus the degraded flag: when upstream is
// unreachable the charts still receive an all-zero dataset instead of an
// error, and the flag tells the frontend to show its banner.
type SummaryResult struct {
	aggregate.Summary
	Degraded bool `json:"degraded,omitempty"`
}

// Overview bundles the four metric summaries for one year.
type Overview struct {
	Year         string        `json:"year"`
	Clients      SummaryResult `json:"clients"`
	Programs     SummaryResult `json:"programs"`
	Participants SummaryResult `json:"participants"`
	Revenue      SummaryResult `json:"revenue"`
	GeneratedAt  time.Time     `json:"generatedAt"`
}

// Cards carries the absolute stat-card counters, independent of any year
// filter.
type Cards struct {
	TotalClients      int    `json:"totalClients"`
	TotalPrograms     int    `json:"totalPrograms"`
	TotalParticipants int    `json:"totalParticipants"`
	TotalRevenue      int64  `json:"totalRevenue"`
	RevenueLabel      string `json:"revenueLabel"`
}

// Service coordinates aggregation with the cache layer. Concurrent identical
// builds collapse through singleflight so a popular year is computed once.
type Service struct {
	source Lister
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewService wires a Lister with a Cache helper.
func NewService(source Lister, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// entityFor maps a metric onto the upstream collection that feeds it; the
// revenue metric reads the priced program catalogue.
func entityFor(metric aggregate.Metric) upstream.Entity {
	switch metric {
	case aggregate.MetricClients:
		return upstream.EntityClients
	case aggregate.MetricParticipants:
		return upstream.EntityParticipants
	default:
		return upstream.EntityPrograms
	}
}

// MetricSummary resolves one metric's year summary through cache and
// singleflight. Upstream failure degrades to the all-zero summary rather
// than erroring; invalid metric or year is a caller bug and does error.
func (s *Service) MetricSummary(ctx context.Context, metric aggregate.Metric, year string) (SummaryResult, error) {
	if !metric.Valid() {
		return SummaryResult{}, fmt.Errorf("%w: metric %q", httpx.ErrValidation, metric)
	}
	if !yearRegex.MatchString(year) {
		return SummaryResult{}, fmt.Errorf("%w: year %q", httpx.ErrValidation, year)
	}

	loader := func(ctx context.Context) (interface{}, error) {
		envelope, err := s.source.ListAll(ctx, entityFor(metric))
		if err != nil {
			return nil, err
		}
		summary, err := aggregate.Aggregate(envelope.Data, year, metric, envelope.Count())
		if err != nil {
			return nil, err
		}
		return SummaryResult{Summary: summary}, nil
	}

	flightKey := keySummary(string(metric), year)
	value, err, _ := s.group.Do(flightKey, func() (interface{}, error) {
		var result SummaryResult
		if s.cache == nil {
			raw, err := loader(ctx)
			if err != nil {
				return SummaryResult{}, err
			}
			return raw.(SummaryResult), nil
		}
		key, err := s.cache.BuildKey(ctx, flightKey)
		if err != nil {
			return SummaryResult{}, err
		}
		if err := s.cache.FetchJSON(ctx, key, &result, loader); err != nil {
			return SummaryResult{}, err
		}
		return result, nil
	})
	if err != nil {
		if errors.Is(err, httpx.ErrUpstream) || errors.Is(err, httpx.ErrUpstreamTimeout) {
			return s.degradedSummary(metric, year, err), nil
		}
		return SummaryResult{}, err
	}
	return value.(SummaryResult), nil
}

// degradedSummary builds the all-zero fallback so charts render an empty
// state instead of crashing. Never cached.
func (s *Service) degradedSummary(metric aggregate.Metric, year string, cause error) SummaryResult {
	if s.logger != nil {
		s.logger.Error("dashboard summary degraded",
			slog.String("metric", string(metric)),
			slog.String("year", year),
			slog.Any("error", cause))
	}
	summary, _ := aggregate.Aggregate(nil, year, metric, 0)
	return SummaryResult{Summary: summary, Degraded: true}
}

// MetricOverview computes the four metric summaries for one year in
// parallel.
func (s *Service) MetricOverview(ctx context.Context, year string) (Overview, error) {
	if !yearRegex.MatchString(year) {
		return Overview{}, fmt.Errorf("%w: year %q", httpx.ErrValidation, year)
	}
	overview := Overview{Year: year, GeneratedAt: s.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(metric aggregate.Metric, dest *SummaryResult) {
		g.Go(func() error {
			result, err := s.MetricSummary(gctx, metric, year)
			if err != nil {
				return err
			}
			*dest = result
			return nil
		})
	}
	fetch(aggregate.MetricClients, &overview.Clients)
	fetch(aggregate.MetricPrograms, &overview.Programs)
	fetch(aggregate.MetricParticipants, &overview.Participants)
	fetch(aggregate.MetricRevenue, &overview.Revenue)
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}

// CardTotals resolves the absolute counters for the stat cards, cached under
// the same version as the summaries.
func (s *Service) CardTotals(ctx context.Context) (Cards, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.loadCards(ctx)
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Cards{}, err
		}
		return value.(Cards), nil
	}
	key, err := s.cache.BuildKey(ctx, keyCards())
	if err != nil {
		return Cards{}, err
	}
	var cards Cards
	if err := s.cache.FetchJSON(ctx, key, &cards, loader); err != nil {
		return Cards{}, err
	}
	return cards, nil
}

func (s *Service) loadCards(ctx context.Context) (Cards, error) {
	var cards Cards
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		envelope, err := s.source.ListAll(gctx, upstream.EntityClients)
		if err != nil {
			return err
		}
		cards.TotalClients = envelope.Count()
		return nil
	})
	g.Go(func() error {
		envelope, err := s.source.ListAll(gctx, upstream.EntityParticipants)
		if err != nil {
			return err
		}
		cards.TotalParticipants = envelope.Count()
		return nil
	})
	g.Go(func() error {
		envelope, err := s.source.ListAll(gctx, upstream.EntityPrograms)
		if err != nil {
			return err
		}
		list, err := upstream.Decode[programs.Program](envelope)
		if err != nil {
			return err
		}
		cards.TotalPrograms = len(list)
		for _, program := range list {
			if amount := program.PriceAmount(); amount > 0 {
				cards.TotalRevenue += amount
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Cards{}, err
	}
	cards.RevenueLabel = FormatRupiah(cards.TotalRevenue)
	return cards, nil
}

// Invalidate bumps the cache version; the next read recomputes everything.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
