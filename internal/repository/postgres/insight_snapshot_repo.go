// internal/repository/postgres/insight_snapshot_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-insight/internal/domain/snapshot"
	xerrors "crm-insight/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
)

type InsightSnapshotRepository struct {
	db *pgxpool.Pool
}

func NewInsightSnapshotRepository(db *pgxpool.Pool) *InsightSnapshotRepository {
	return &InsightSnapshotRepository{db: db}
}

// Create stores a snapshot, assigning ID and ComputedAt when unset.
func (r *InsightSnapshotRepository) Create(ctx context.Context, s *snapshot.InsightSnapshot) error {
	if s.ID == "" {
		s.ID = ulid.Make().String()
	}
	if s.ComputedAt.IsZero() {
		s.ComputedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO insight_snapshots (
			id, customer_id, credit_tier, satisfaction_tier, value_segment,
			spending_health, spending_ratio, actions, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		s.ID, s.CustomerID, s.CreditTier, s.SatisfactionTier, s.ValueSegment,
		s.SpendingHealth, s.SpendingRatio, pq.StringArray(s.Actions), s.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create insight snapshot: %w", err)
	}
	return nil
}

// ListByCustomer returns the newest snapshots first.
func (r *InsightSnapshotRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*snapshot.InsightSnapshot, error) {
	query := `
		SELECT id, customer_id, credit_tier, satisfaction_tier, value_segment,
		       spending_health, spending_ratio, actions, computed_at
		FROM insight_snapshots
		WHERE customer_id = $1
		ORDER BY computed_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insight snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []*snapshot.InsightSnapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate insight snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *InsightSnapshotRepository) Latest(ctx context.Context, customerID string) (*snapshot.InsightSnapshot, error) {
	query := `
		SELECT id, customer_id, credit_tier, satisfaction_tier, value_segment,
		       spending_health, spending_ratio, actions, computed_at
		FROM insight_snapshots
		WHERE customer_id = $1
		ORDER BY computed_at DESC, id DESC
		LIMIT 1
	`

	s, err := scanSnapshot(r.db.QueryRow(ctx, query, customerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	return s, err
}

func scanSnapshot(row pgx.Row) (*snapshot.InsightSnapshot, error) {
	var s snapshot.InsightSnapshot
	var actions pq.StringArray

	err := row.Scan(
		&s.ID, &s.CustomerID, &s.CreditTier, &s.SatisfactionTier, &s.ValueSegment,
		&s.SpendingHealth, &s.SpendingRatio, &actions, &s.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan insight snapshot: %w", err)
	}

	s.Actions = []string(actions)
	if s.Actions == nil {
		s.Actions = []string{}
	}
	return &s, nil
}
