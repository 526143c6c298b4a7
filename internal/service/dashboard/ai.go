package dashboard

import (
	"context"
	"fmt"

	"crm-insight/internal/cache"
	"crm-insight/internal/domain/customer"
	"crm-insight/internal/domain/snapshot"
	xerrors "crm-insight/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// RunAI triggers the remote scoring job for a customer. The profile cache
// is dropped on success so the next read picks up the new scores.
func (s *DashboardService) RunAI(ctx context.Context, customerID, operatorID string) (*customer.MutationResult, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}

	if err := s.allowAIRun(ctx, customerID); err != nil {
		return nil, err
	}

	run := &snapshot.AIRun{
		ID:          ulid.Make().String(),
		CustomerID:  customerID,
		RequestedBy: operatorID,
	}
	recorded := false
	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			s.logger.Error("failed to record ai run", zap.String("customer_id", customerID), zap.Error(err))
		} else {
			recorded = true
		}
	}

	if err := s.crm.RunAI(ctx, customerID); err != nil {
		if recorded {
			// The request context may already be gone.
			if merr := s.runs.MarkFailed(context.WithoutCancel(ctx), run.ID, err.Error()); merr != nil {
				s.logger.Error("failed to mark ai run failed", zap.String("run_id", run.ID), zap.Error(merr))
			}
		}
		s.logger.Warn("ai run failed",
			zap.String("customer_id", customerID),
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
		return nil, err
	}

	if recorded {
		if err := s.runs.MarkCompleted(ctx, run.ID); err != nil {
			s.logger.Error("failed to mark ai run completed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	keys := s.cache.Invalidate(ctx, cache.OpRunAI, customerID)
	s.logger.Info("ai run completed",
		zap.String("customer_id", customerID),
		zap.String("run_id", run.ID),
		zap.String("operator_id", operatorID),
		zap.Strings("invalidated", keys),
	)

	return &customer.MutationResult{CustomerID: customerID, RunID: run.ID}, nil
}

// allowAIRun fails open when the limiter itself is unavailable.
func (s *DashboardService) allowAIRun(ctx context.Context, customerID string) error {
	if s.aiLimiter == nil || s.aiLimit <= 0 {
		return nil
	}

	ok, remaining, err := s.aiLimiter.Allow(ctx, aiRunKey(customerID), s.aiLimit, s.aiWindow)
	if err != nil {
		s.logger.Warn("ai run limiter unavailable", zap.String("customer_id", customerID), zap.Error(err))
		return nil
	}
	if !ok {
		return fmt.Errorf("ai run for %s: %w (limit %d per %s)", customerID, xerrors.ErrRateLimited, s.aiLimit, s.aiWindow)
	}

	s.logger.Debug("ai run allowed", zap.String("customer_id", customerID), zap.Int64("remaining", remaining))
	return nil
}

// ResetAIRunLimit clears the AI-run window for a customer.
func (s *DashboardService) ResetAIRunLimit(ctx context.Context, customerID, operatorID string) error {
	if err := validateCustomerID(customerID); err != nil {
		return err
	}
	if s.aiLimiter == nil {
		return nil
	}
	if err := s.aiLimiter.Reset(ctx, aiRunKey(customerID)); err != nil {
		return fmt.Errorf("failed to reset ai run limit: %w", err)
	}
	s.logger.Info("ai run limit reset",
		zap.String("customer_id", customerID),
		zap.String("operator_id", operatorID),
	)
	return nil
}

func aiRunKey(customerID string) string {
	return "run-ai:" + customerID
}

// ListAIRuns returns recorded runs, newest first.
func (s *DashboardService) ListAIRuns(ctx context.Context, customerID string, limit int) ([]*snapshot.AIRun, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	if s.runs == nil {
		return []*snapshot.AIRun{}, nil
	}
	return s.runs.ListByCustomer(ctx, customerID, snapshot.ClampLimit(limit))
}
