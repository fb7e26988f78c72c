// Package maintenance runs periodic background tasks as Go tickers. The only
// scheduled task is refreshing datasets so the stored snapshot never goes
// stale when nobody presses refresh in the admin UI.
package maintenance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/albapepper/scoracle-feeds/internal/dataset"
	"github.com/albapepper/scoracle-feeds/internal/resolver"
)

// Refresher is the part of the resolver maintenance drives.
type Refresher interface {
	RefreshSnapshot(ctx context.Context, kinds []dataset.Kind) (resolver.Snapshot, error)
	StoredKinds(ctx context.Context) ([]dataset.Kind, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	RefreshInterval time.Duration  // Live refresh of Datasets
	Datasets        []dataset.Kind // Kinds refreshed on each tick
	SeedOnStart     bool           // Refresh kinds with no stored document at startup
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: time.Hour,
		Datasets:        dataset.All(),
		SeedOnStart:     true,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, r Refresher, cfg Config, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Maintenance tickers started",
		"refresh", cfg.RefreshInterval,
		"datasets", dataset.Strings(cfg.Datasets),
		"seed_on_start", cfg.SeedOnStart)

	if cfg.SeedOnStart {
		SeedMissing(ctx, r, cfg.Datasets, logger)
	}

	if cfg.RefreshInterval > 0 && len(cfg.Datasets) > 0 {
		t := time.NewTicker(cfg.RefreshInterval)
		defer t.Stop()
		go runLoop(ctx, t.C, "refresh", func() { refresh(ctx, r, cfg.Datasets, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, name string, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// refresh re-resolves kinds and writes them back. Store failures are logged;
// the next tick retries.
func refresh(ctx context.Context, r Refresher, kinds []dataset.Kind, logger *slog.Logger) {
	start := time.Now()
	snap, err := r.RefreshSnapshot(ctx, kinds)
	dur := time.Since(start).Round(time.Millisecond)

	switch {
	case errors.Is(err, resolver.ErrPersist):
		logger.Warn("Scheduled refresh: snapshot not fully saved", "duration", dur, "error", err)
	case err != nil:
		logger.Warn("Scheduled refresh failed", "duration", dur, "error", err)
	default:
		fallbacks := 0
		for _, m := range snap.Meta {
			if m.Origin == resolver.OriginFallback {
				fallbacks++
			}
		}
		logger.Info("Scheduled refresh complete",
			"datasets", len(snap.Datasets), "fallbacks", fallbacks, "duration", dur)
	}
}
