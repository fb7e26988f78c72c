// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking for the Postgres snapshot backend.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-feeds/internal/config"
)

// Prepared statement names.
const (
	StmtHealthCheck  = "health_check"
	StmtSnapshotGet  = "snapshot_get"
	StmtSnapshotPut  = "snapshot_put"
	StmtSnapshotKeys = "snapshot_keys"
)

// Schema creates the snapshot table. The document column is json rather
// than jsonb so stored bytes are returned exactly as written.
const Schema = `CREATE TABLE IF NOT EXISTS ` + config.SnapshotTable + ` (
	key        text PRIMARY KEY,
	document   json NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool, creating the snapshot
// table if needed.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// The table must exist before statements referencing it are prepared.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, Schema); err != nil {
			return fmt.Errorf("create snapshot table: %w", err)
		}
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, StmtHealthCheck).Scan(&n)
}

func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		StmtHealthCheck: "SELECT 1",

		StmtSnapshotGet: "SELECT document::text FROM " + config.SnapshotTable + " WHERE key = $1",
		StmtSnapshotPut: "INSERT INTO " + config.SnapshotTable + " (key, document, updated_at) VALUES ($1, ($2::text)::json, now()) " +
			"ON CONFLICT (key) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at",
		StmtSnapshotKeys: "SELECT key FROM " + config.SnapshotTable + " ORDER BY key",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
