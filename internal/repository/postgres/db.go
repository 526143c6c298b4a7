// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.pool.Begin(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS insight_snapshots (
		id                TEXT PRIMARY KEY,
		customer_id       TEXT NOT NULL,
		credit_tier       TEXT NOT NULL,
		satisfaction_tier TEXT NOT NULL,
		value_segment     TEXT NOT NULL,
		spending_health   TEXT NOT NULL,
		spending_ratio    DOUBLE PRECISION,
		actions           TEXT[] NOT NULL DEFAULT '{}',
		computed_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_insight_snapshots_customer
		ON insight_snapshots (customer_id, computed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS ai_runs (
		id           TEXT PRIMARY KEY,
		customer_id  TEXT NOT NULL,
		requested_by TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		error        TEXT,
		requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		finished_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ai_runs_customer
		ON ai_runs (customer_id, requested_at DESC)`,
}

// Migrate creates the service tables. It is safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
