package maintenance

import (
	"context"
	"log/slog"

	"github.com/albapepper/scoracle-feeds/internal/dataset"
)

// SeedMissing refreshes the kinds among want that have no stored document,
// so a fresh deployment serves live data instead of the static tail. Kinds
// already stored are left alone; they may be manual overrides.
func SeedMissing(ctx context.Context, r Refresher, want []dataset.Kind, logger *slog.Logger) []dataset.Kind {
	stored, err := r.StoredKinds(ctx)
	if err != nil {
		logger.Warn("Seed: failed to list stored datasets", "error", err)
		return nil
	}
	have := make(map[dataset.Kind]bool, len(stored))
	for _, k := range stored {
		have[k] = true
	}

	var missing []dataset.Kind
	for _, k := range want {
		if !have[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		logger.Debug("Seed: every dataset already stored")
		return nil
	}

	logger.Info("Seed: refreshing datasets with no stored document", "datasets", dataset.Strings(missing))
	refresh(ctx, r, missing, logger)
	return missing
}
