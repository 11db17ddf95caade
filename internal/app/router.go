package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vitrin-app/vitrin/internal/admin"
	"github.com/vitrin-app/vitrin/internal/dashboard"
	"github.com/vitrin-app/vitrin/internal/display"
	"github.com/vitrin-app/vitrin/internal/importer"
	"github.com/vitrin-app/vitrin/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	DashboardHandler *dashboard.Handler
	DisplayHandler   *display.Handler
	ImportHandler    *importer.Handler
	AdminHandler     *admin.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with Vitrin defaults. The whole surface
// is JSON under /api.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.DashboardHandler.MountRoutes(r)
		params.ImportHandler.MountRoutes(r)
		r.Route("/display", params.DisplayHandler.MountRoutes)
		r.Route("/admin", params.AdminHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
