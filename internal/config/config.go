// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Snapshot backends
// --------------------------------------------------------------------------

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// SnapshotTable is the Postgres and SQLite table holding snapshot documents.
const SnapshotTable = "dataset_snapshots"

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Snapshot store
	SnapshotBackend    string
	SnapshotDir        string
	SnapshotSQLitePath string

	// Database (postgres backend only)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool
	LogLevel    slog.Level

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
	CacheTTL     time.Duration

	// Upstream fetching
	FetchTimeout           time.Duration
	FetchRequestsPerMinute int
	FetchUserAgent         string

	// Datasets
	F1Season        int
	SourcesFile     string
	RefreshInterval time.Duration // 0 disables scheduled refresh
	RefreshDatasets string        // kinds or groups refreshed on schedule
	SeedOnStart     bool          // refresh never-stored kinds at API startup
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		SnapshotBackend:    strings.ToLower(envOr("SNAPSHOT_BACKEND", BackendFile)),
		SnapshotDir:        envOr("SNAPSHOT_DIR", "data"),
		SnapshotSQLitePath: envOr("SNAPSHOT_SQLITE_PATH", "data/snapshots.db"),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 5),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),
		LogLevel:    envLevel("LOG_LEVEL", slog.LevelInfo),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
		CacheTTL:     time.Duration(envInt("CACHE_TTL_SECONDS", 300)) * time.Second,

		FetchTimeout:           time.Duration(envInt("FETCH_TIMEOUT_SECONDS", 8)) * time.Second,
		FetchRequestsPerMinute: envInt("FETCH_REQUESTS_PER_MINUTE", 60),
		FetchUserAgent:         envOr("FETCH_USER_AGENT", ""),

		F1Season:        envInt("F1_SEASON", 2025),
		SourcesFile:     envOr("SOURCES_FILE", ""),
		RefreshInterval: time.Duration(envInt("REFRESH_INTERVAL_MINUTES", 0)) * time.Minute,
		RefreshDatasets: envOr("REFRESH_DATASETS", "all"),
		SeedOnStart:     envBool("SEED_ON_START", false),
	}
	if cfg.Debug {
		cfg.LogLevel = slog.LevelDebug
	}

	switch cfg.SnapshotBackend {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set when SNAPSHOT_BACKEND=%s", BackendPostgres)
		}
	default:
		return nil, fmt.Errorf("SNAPSHOT_BACKEND %q: want %s, %s or %s",
			cfg.SnapshotBackend, BackendFile, BackendPostgres, BackendSQLite)
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT_SECONDS must be positive")
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
