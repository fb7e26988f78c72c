package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/scoracle-feeds/internal/api/handler"
	"github.com/albapepper/scoracle-feeds/internal/cache"
	"github.com/albapepper/scoracle-feeds/internal/config"
	"github.com/albapepper/scoracle-feeds/internal/resolver"
	"github.com/albapepper/scoracle-feeds/internal/snapshot"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(res *resolver.Resolver, store snapshot.Store, appCache *cache.Cache, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(res, store, appCache, cfg, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/store", h.HealthCheckStore)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Presentation reads
		r.Get("/snapshot", h.GetCurrentSnapshot)
		r.Get("/snapshot/preview", h.PreviewSnapshot)
		r.Get("/datasets", h.ListDatasets)
		r.Get("/datasets/{kind}", h.GetDataset)

		// Operator writes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/refresh", h.Refresh)
			r.Post("/save", h.Save)
			r.Get("/update", h.CurrentData)
			r.Post("/update", h.Update)
		})
	})

	return r
}
