package app

import (
	"net/http"
	"schoolPlanner/internal/config"
	"schoolPlanner/internal/handlers"
	"schoolPlanner/internal/middleware"
	"schoolPlanner/internal/web"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the API, the embedded UI and the middleware chain.
func NewRouter(svc handlers.Service, cfg config.HTTPConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{
			middleware.RequestIDHeader,
			handlers.StorageWarningHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		MaxAge: 300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	handlers.NewTaskHandler(svc).Register(r)

	ui := web.Handler()
	r.Method(http.MethodGet, "/", ui)
	r.Method(http.MethodGet, "/index.html", ui)

	return r
}
