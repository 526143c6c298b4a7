// internal/repository/postgres/ai_run_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"crm-insight/internal/domain/snapshot"
	xerrors "crm-insight/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

type AIRunRepository struct {
	db *pgxpool.Pool
}

func NewAIRunRepository(db *pgxpool.Pool) *AIRunRepository {
	return &AIRunRepository{db: db}
}

// Create records a run in the requested state.
func (r *AIRunRepository) Create(ctx context.Context, run *snapshot.AIRun) error {
	if run.ID == "" {
		run.ID = ulid.Make().String()
	}
	if run.RequestedAt.IsZero() {
		run.RequestedAt = time.Now().UTC()
	}
	run.Status = snapshot.AIRunRequested

	query := `
		INSERT INTO ai_runs (id, customer_id, requested_by, status, requested_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.Exec(ctx, query, run.ID, run.CustomerID, run.RequestedBy, run.Status, run.RequestedAt); err != nil {
		return fmt.Errorf("failed to create ai run: %w", err)
	}
	return nil
}

func (r *AIRunRepository) MarkCompleted(ctx context.Context, id string) error {
	return r.finish(ctx, id, snapshot.AIRunCompleted, nil)
}

func (r *AIRunRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.finish(ctx, id, snapshot.AIRunFailed, &reason)
}

func (r *AIRunRepository) finish(ctx context.Context, id string, status snapshot.AIRunStatus, reason *string) error {
	query := `
		UPDATE ai_runs
		SET status = $2, error = $3, finished_at = NOW()
		WHERE id = $1 AND status = 'requested'
	`

	tag, err := r.db.Exec(ctx, query, id, status, reason)
	if err != nil {
		return fmt.Errorf("failed to update ai run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ListByCustomer returns the newest runs first.
func (r *AIRunRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*snapshot.AIRun, error) {
	query := `
		SELECT id, customer_id, requested_by, status, error, requested_at, finished_at
		FROM ai_runs
		WHERE customer_id = $1
		ORDER BY requested_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ai runs: %w", err)
	}
	defer rows.Close()

	runs := []*snapshot.AIRun{}
	for rows.Next() {
		var run snapshot.AIRun
		if err := rows.Scan(
			&run.ID, &run.CustomerID, &run.RequestedBy, &run.Status,
			&run.Error, &run.RequestedAt, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ai run: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ai runs: %w", err)
	}
	return runs, nil
}
