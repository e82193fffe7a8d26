// Package dashboardhttp serves the chart and stat-card endpoints consumed by
// the single-page admin frontend.
package dashboardhttp

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/impalahub/impalahub/internal/aggregate"
	"github.com/impalahub/impalahub/internal/dashboard"
	"github.com/impalahub/impalahub/internal/dashboard/export"
	"github.com/impalahub/impalahub/internal/platform/httpx"
)

const requestTimeout = 15 * time.Second

// DashboardService defines the data contract used by the handler.
type DashboardService interface {
	MetricSummary(ctx context.Context, metric aggregate.Metric, year string) (dashboard.SummaryResult, error)
	MetricOverview(ctx context.Context, year string) (dashboard.Overview, error)
	CardTotals(ctx context.Context) (dashboard.Cards, error)
	Invalidate(ctx context.Context) error
}

// Handler coordinates HTTP requests for the analytics dashboard.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
	csvPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		now:     time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	metric, year := h.parseMetricYear(r)
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.MetricSummary(ctx, metric, year)
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	_, year := h.parseMetricYear(r)
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	overview, err := h.service.MetricOverview(ctx, year)
	if err != nil {
		h.logger.Error("dashboard overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) handleCards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cards, err := h.service.CardTotals(ctx)
	if err != nil {
		h.logger.Error("dashboard cards", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cards)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	metric, year := h.parseMetricYear(r)
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.MetricSummary(ctx, metric, year)
	if err != nil {
		h.logger.Error("dashboard csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.csvPool.Put(buf)

	if err := export.WriteSummaryCSV(buf, result.Summary); err != nil {
		h.logger.Error("write summary csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "")
		return
	}
	buf.WriteString("\n")
	if err := export.WriteMonthlyCSV(buf, result.Summary); err != nil {
		h.logger.Error("write monthly csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "")
		return
	}
	buf.WriteString("\n")
	if err := export.WriteQuarterlyCSV(buf, result.Summary); err != nil {
		h.logger.Error("write quarterly csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "")
		return
	}

	filename := "dashboard-" + string(metric) + "-" + year + ".csv"
	httpx.Attachment(w, filename, "text/csv; charset=utf-8", buf.Len())
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Invalidate(r.Context()); err != nil {
		h.logger.Error("dashboard refresh", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "invalidated"})
}

// parseMetricYear reads the metric and year query params with their
// defaults: clients and the current year. Validation happens in the service.
func (h *Handler) parseMetricYear(r *http.Request) (aggregate.Metric, string) {
	metric := aggregate.Metric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = aggregate.MetricClients
	}
	year := r.URL.Query().Get("year")
	if year == "" {
		year = strconv.Itoa(h.now().Year())
	}
	return metric, year
}
