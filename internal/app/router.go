package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridianpay/console/internal/analytics"
	"github.com/meridianpay/console/internal/auth"
	"github.com/meridianpay/console/internal/console/admins"
	"github.com/meridianpay/console/internal/console/plans"
	"github.com/meridianpay/console/internal/console/staff"
	"github.com/meridianpay/console/internal/console/users"
	"github.com/meridianpay/console/internal/observability"
	"github.com/meridianpay/console/internal/shared"
	"github.com/meridianpay/console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	PlansHandler     *plans.Handler
	StaffHandler     *staff.Handler
	AdminsHandler    *admins.Handler
	AnalyticsHandler *analytics.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
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

	if static, err := fs.Sub(web.Static, "static"); err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r, LoginRateLimit())
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Get("/", params.AnalyticsHandler.Dashboard)
		r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/plans", params.PlansHandler.MountRoutes)
		r.Route("/staff", params.StaffHandler.MountRoutes)
		r.Route("/admins", params.AdminsHandler.MountRoutes)
		r.Route("/settings", params.AuthHandler.MountSettingsRoutes)
	})

	return r
}
