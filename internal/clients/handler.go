package clients

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/impalahub/impalahub/internal/platform/httpx"
)

// Handler serves the client listing and stat endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the clients HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches client routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
}

// List answers GET /api/clients with a filtered, paginated roster.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListRequest{
		Search:       r.URL.Query().Get("search"),
		Status:       r.URL.Query().Get("status"),
		BusinessType: r.URL.Query().Get("businessType"),
		Page:         queryInt(r, "page"),
		Limit:        queryInt(r, "limit"),
	}
	resp, err := h.service.List(r.Context(), req)
	if err != nil && !resp.Stale {
		h.logger.Error("list clients", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err != nil {
		// Stale data beats an empty table; the client reads the flag.
		h.logger.Warn("serving stale client list", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Stats answers GET /api/clients/stats for the dashboard cards.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("client stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
