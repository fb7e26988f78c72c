// Command api is the Scoracle Feeds API server.
//
// Usage:
//
//	scoracle-api
//	API_PORT=8080 SNAPSHOT_BACKEND=sqlite scoracle-api

// @title Scoracle Feeds API
// @version 1.0.0
// @description Resolves race standings, race weekends and club data through ordered provider fallback chains, with manual overrides taking priority.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Scoracle
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/scoracle-feeds/internal/api"
	"github.com/albapepper/scoracle-feeds/internal/cache"
	"github.com/albapepper/scoracle-feeds/internal/config"
	"github.com/albapepper/scoracle-feeds/internal/dataset"
	"github.com/albapepper/scoracle-feeds/internal/maintenance"
	"github.com/albapepper/scoracle-feeds/internal/provider/fetch"
	"github.com/albapepper/scoracle-feeds/internal/resolver"
	"github.com/albapepper/scoracle-feeds/internal/snapshot"

	_ "github.com/albapepper/scoracle-feeds/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Provider chains
	sources, err := dataset.LoadSources(cfg.SourcesFile, cfg.F1Season)
	if err != nil {
		logger.Error("Failed to load sources", "file", cfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	client := fetch.NewClient(fetch.Options{
		Timeout:           cfg.FetchTimeout,
		RequestsPerMinute: cfg.FetchRequestsPerMinute,
		UserAgent:         cfg.FetchUserAgent,
	}, logger)
	registry, err := dataset.NewRegistry(dataset.Deps{Client: client, Sources: sources, Now: time.Now, Logger: logger})
	if err != nil {
		logger.Error("Failed to build dataset chains", "error", err)
		os.Exit(1)
	}

	// Snapshot store
	store, err := snapshot.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open snapshot store", "backend", cfg.SnapshotBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	res := resolver.New(registry, store, logger)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled, "ttl", cfg.CacheTTL)

	// Scheduled refresh
	refreshKinds, err := dataset.ParseList(cfg.RefreshDatasets)
	if err != nil {
		logger.Error("Invalid REFRESH_DATASETS", "value", cfg.RefreshDatasets, "error", err)
		os.Exit(1)
	}
	if cfg.RefreshInterval > 0 || cfg.SeedOnStart {
		go maintenance.Start(ctx, res, maintenance.Config{
			RefreshInterval: cfg.RefreshInterval,
			Datasets:        refreshKinds,
			SeedOnStart:     cfg.SeedOnStart,
		}, logger)
	} else {
		logger.Info("Scheduled refresh disabled (REFRESH_INTERVAL_MINUTES=0)")
	}

	// Create router
	router := api.NewRouter(res, store, appCache, cfg, logger)

	// Create HTTP server. Refresh resolves every chain, so the write timeout
	// must cover several sequential fetch timeouts.
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5*cfg.FetchTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Scoracle Feeds API",
			"addr", addr,
			"environment", cfg.Environment,
			"backend", cfg.SnapshotBackend,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
