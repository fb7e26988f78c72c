package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/scoracle-feeds/internal/db"
)

// PostgresStore keeps documents in the dataset_snapshots table. Each Put is
// a single upsert statement.
type PostgresStore struct {
	pool *db.Pool
}

func NewPostgresStore(pool *db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var doc string
	err := s.pool.QueryRow(ctx, db.StmtSnapshotGet, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot %s: %w", key, err)
	}
	return json.RawMessage(doc), nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, doc json.RawMessage) error {
	if err := checkPut(key, doc); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, db.StmtSnapshotPut, key, string(doc)); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, db.StmtSnapshotKeys)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan snapshot keys: %w", err)
	}
	return keys, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.HealthCheck(ctx) }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
