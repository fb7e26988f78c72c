// Package handler provides HTTP handlers for all API endpoints. Handlers are
// thin: every read and write goes through the resolver, and rendered read
// responses are cached with ETags until a write touches one of their kinds.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/scoracle-feeds/internal/api/respond"
	"github.com/albapepper/scoracle-feeds/internal/cache"
	"github.com/albapepper/scoracle-feeds/internal/config"
	"github.com/albapepper/scoracle-feeds/internal/dataset"
	"github.com/albapepper/scoracle-feeds/internal/resolver"
	"github.com/albapepper/scoracle-feeds/internal/snapshot"
)

// maxBodyBytes bounds admin request bodies.
const maxBodyBytes = 4 << 20

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	resolver *resolver.Resolver
	store    snapshot.Store
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
}

// New creates a Handler and subscribes the cache to resolver writes.
func New(res *resolver.Resolver, store snapshot.Store, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	res.OnChange(func(kinds []dataset.Kind) {
		n := c.Invalidate(dataset.Strings(kinds)...)
		logger.Debug("Cache invalidated", "datasets", dataset.Strings(kinds), "entries", n)
	})
	return &Handler{resolver: res, store: store, cache: c, cfg: cfg, logger: logger}
}

func (h *Handler) ttl() time.Duration {
	if h.cfg != nil && h.cfg.CacheTTL > 0 {
		return h.cfg.CacheTTL
	}
	return cache.DefaultTTL
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and the dataset groups accepted by the datasets parameter.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Scoracle Feeds API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"groups":  []string{dataset.GroupF1, dataset.GroupFootball, dataset.GroupAll},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckStore verifies the snapshot store is reachable and writable.
// @Summary Snapshot store health check
// @Description Pings the configured snapshot store backend.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/store [get]
func (h *Handler) HealthCheckStore(w http.ResponseWriter, r *http.Request) {
	backend := ""
	if h.cfg != nil {
		backend = h.cfg.SnapshotBackend
	}
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("Snapshot store health check failed", "backend", backend, "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"backend":   backend,
			"error":     "Snapshot store check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	stored, _ := h.resolver.StoredKinds(r.Context())
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"backend":   backend,
		"stored":    dataset.Strings(stored),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
