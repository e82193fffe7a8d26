package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/impalahub/impalahub/internal/aggregate"
	"github.com/impalahub/impalahub/internal/dashboard"
	jobmetrics "github.com/impalahub/impalahub/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DashboardWarmupJob pre-populates the summary cache so the first page load
// after an invalidation does not pay the aggregation cost.
type DashboardWarmupJob struct {
	Dashboard *dashboard.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(svc *dashboard.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: svc,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	years := j.targetYears(payload)
	logger := j.logger().With(slog.Any("years", years))
	logger.Info("starting dashboard warmup")

	start := j.now()
	for _, year := range years {
		if err := j.warmYear(ctx, year); err != nil {
			resultErr = err
			logger.Error("warm year", slog.String("year", year), slog.Any("error", err))
			return resultErr
		}
	}
	if _, err := j.Dashboard.CardTotals(ctx); err != nil {
		resultErr = err
		logger.Error("warm cards", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed dashboard warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *DashboardWarmupJob) warmYear(ctx context.Context, year string) error {
	// Each year gets its own deadline so one slow upstream read cannot
	// stall the whole run.
	yearCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(yearCtx)
	for _, metric := range []aggregate.Metric{
		aggregate.MetricClients,
		aggregate.MetricPrograms,
		aggregate.MetricParticipants,
		aggregate.MetricRevenue,
	} {
		metric := metric
		g.Go(func() error {
			_, err := j.Dashboard.MetricSummary(gctx, metric, year)
			return err
		})
	}
	return g.Wait()
}

func (j *DashboardWarmupJob) targetYears(payload DashboardWarmupPayload) []string {
	if len(payload.Years) > 0 {
		return payload.Years
	}
	back := payload.YearsBack
	if back <= 0 {
		back = 1
	}
	current := j.now().Year()
	years := make([]string, 0, back+1)
	for offset := 0; offset <= back; offset++ {
		years = append(years, strconv.Itoa(current-offset))
	}
	return years
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
