package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vidspark/vidspark/internal/admin"
	"github.com/vidspark/vidspark/internal/analysis"
	"github.com/vidspark/vidspark/internal/auth"
	"github.com/vidspark/vidspark/internal/observability"
	"github.com/vidspark/vidspark/internal/trending"
	"github.com/vidspark/vidspark/internal/videos"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthMiddleware  auth.Middleware
	AuthHandler     *auth.Handler
	AnalysisHandler *analysis.Handler
	TrendingHandler *trending.Handler
	VideoHandler    *videos.Handler
	AdminHandler    *admin.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router. /auth is open, /api requires a bearer
// token, /admin additionally requires the admin role.
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

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)
		params.AnalysisHandler.MountRoutes(r)
		params.TrendingHandler.MountRoutes(r)
		params.VideoHandler.MountRoutes(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)
		r.Use(params.AuthMiddleware.RequireAdmin)
		params.AdminHandler.MountRoutes(r)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
