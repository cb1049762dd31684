package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/accessdeck/accessdeck/internal/activity"
	"github.com/accessdeck/accessdeck/internal/auth"
	"github.com/accessdeck/accessdeck/internal/observability"
	"github.com/accessdeck/accessdeck/internal/permissions"
	"github.com/accessdeck/accessdeck/internal/roles"
	"github.com/accessdeck/accessdeck/internal/status"
	"github.com/accessdeck/accessdeck/internal/users"
	"github.com/accessdeck/accessdeck/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthHandler        *auth.Handler
	PermissionsHandler *permissions.Handler
	RolesHandler       *roles.Handler
	UsersHandler       *users.Handler
	ActivityHandler    *activity.Handler
	StatusHandler      *status.Handler
	StatusReporter     *status.Reporter
	JobsHandler        *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Config:   params.Config,
		Metrics:  params.Metrics,
		Reporter: params.StatusReporter,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		if params.Config != nil && params.Config.LoginRateLimit > 0 {
			r.Use(httprate.LimitByIP(params.Config.LoginRateLimit, params.Config.LoginRateWindow))
		}
		params.AuthHandler.MountRoutes(r)
	})
	r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	r.Route("/roles", params.RolesHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/activities", params.ActivityHandler.MountRoutes)
	r.Route("/system", params.StatusHandler.MountRoutes)

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
