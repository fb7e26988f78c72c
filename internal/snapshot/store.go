// Package snapshot persists one JSON document per dataset kind. Backends
// are a directory of files, a Postgres table, or a SQLite table; every
// backend replaces a document atomically.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/albapepper/scoracle-feeds/internal/config"
	"github.com/albapepper/scoracle-feeds/internal/db"
)

// ErrNotFound is returned by Get when no document is stored under a key.
var ErrNotFound = errors.New("snapshot not found")

// Store is a flat key to JSON document store.
type Store interface {
	// Get returns the stored document or ErrNotFound.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// Put replaces the document under key. A failed Put leaves the previous
	// document intact.
	Put(ctx context.Context, key string, doc json.RawMessage) error
	// Keys lists stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

var validKey = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func checkPut(key string, doc json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if !json.Valid(doc) {
		return fmt.Errorf("snapshot %q: document is not valid JSON", key)
	}
	return nil
}

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("snapshot key %q: must match %s", key, validKey)
	}
	return nil
}

// Open creates the store selected by cfg.SnapshotBackend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.SnapshotBackend {
	case config.BackendPostgres:
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("postgres snapshot store: %w", err)
		}
		logger.Info("Snapshot store ready", "backend", config.BackendPostgres)
		return NewPostgresStore(pool), nil
	case config.BackendSQLite:
		s, err := OpenSQLite(ctx, cfg.SnapshotSQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Snapshot store ready", "backend", config.BackendSQLite, "path", cfg.SnapshotSQLitePath)
		return s, nil
	default:
		s, err := NewFileStore(cfg.SnapshotDir)
		if err != nil {
			return nil, err
		}
		logger.Info("Snapshot store ready", "backend", config.BackendFile, "dir", cfg.SnapshotDir)
		return s, nil
	}
}
