package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/impalahub/impalahub/internal/clients"
	dashboardhttp "github.com/impalahub/impalahub/internal/dashboard/http"
	"github.com/impalahub/impalahub/internal/observability"
	"github.com/impalahub/impalahub/internal/participants"
	"github.com/impalahub/impalahub/internal/programs"
	"github.com/impalahub/impalahub/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	ClientsHandler      *clients.Handler
	ProgramsHandler     *programs.Handler
	ParticipantsHandler *participants.Handler
	DashboardHandler    *dashboardhttp.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with ImpalaHub defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		if params.ClientsHandler != nil {
			api.Route("/clients", params.ClientsHandler.MountRoutes)
		}
		if params.ProgramsHandler != nil {
			api.Route("/programs", params.ProgramsHandler.MountRoutes)
		}
		if params.ParticipantsHandler != nil {
			api.Route("/participants", params.ParticipantsHandler.MountRoutes)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(api)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
