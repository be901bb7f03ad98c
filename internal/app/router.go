package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/scriptorium-hq/scriptorium/internal/audit"
	"github.com/scriptorium-hq/scriptorium/internal/observability"
	"github.com/scriptorium-hq/scriptorium/internal/papers"
	"github.com/scriptorium-hq/scriptorium/internal/roles"
	"github.com/scriptorium-hq/scriptorium/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	PapersHandler *papers.Handler
	RolesHandler  *roles.Handler
	AuditHandler  *audit.Handler
	JobsHandler   *jobs.Handler
	Metrics       *observability.Metrics
}

// NewRouter constructs the chi.Router with registry defaults.
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

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/papers", params.PapersHandler.MountRoutes)
	r.Route("/roles", params.RolesHandler.MountRoutes)
	if params.AuditHandler != nil {
		r.Route("/audit", params.AuditHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}
