package dashboard

import (
	"context"
	"fmt"
	"time"

	"crm-insight/internal/domain/customer"
	"crm-insight/internal/domain/snapshot"
	"crm-insight/internal/insight"
	xerrors "crm-insight/internal/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// InsightsResult is the dashboard view-model for one customer.
type InsightsResult struct {
	insight.CustomerInsights
	// RejectedRecords counts history elements left out of the summary.
	RejectedRecords int    `json:"rejected_records"`
	SnapshotID      string `json:"snapshot_id,omitempty"`
}

// GetInsights loads the profile and all three histories concurrently and
// summarises them. Any load failure fails the whole call; individual bad
// history records only reduce the input.
func (s *DashboardService) GetInsights(ctx context.Context, customerID string) (*InsightsResult, error) {
	var (
		profile   *customer.Profile
		support   *History[customer.SupportRecord]
		purchases *History[customer.PurchaseRecord]
		social    *History[customer.SocialMediaRecord]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = s.GetProfile(gctx, customerID)
		return err
	})
	g.Go(func() (err error) {
		support, err = s.GetSupportHistory(gctx, customerID)
		return err
	})
	g.Go(func() (err error) {
		purchases, err = s.GetPurchaseHistory(gctx, customerID)
		return err
	})
	g.Go(func() (err error) {
		social, err = s.GetSocialMediaHistory(gctx, customerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &InsightsResult{
		CustomerInsights: insight.Summarize(profile, support.Records, purchases.Records, social.Records),
		RejectedRecords:  len(support.Rejected) + len(purchases.Rejected) + len(social.Rejected),
	}

	if s.snapshots != nil {
		snap := snapshotOf(&res.CustomerInsights)
		if err := s.snapshots.Create(ctx, snap); err != nil {
			s.logger.Error("failed to persist insight snapshot",
				zap.String("customer_id", customerID),
				zap.Error(err),
			)
		} else {
			res.SnapshotID = snap.ID
		}
	}

	return res, nil
}

// ListInsightHistory returns stored snapshots, newest first.
func (s *DashboardService) ListInsightHistory(ctx context.Context, customerID string, limit int) ([]*snapshot.InsightSnapshot, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return []*snapshot.InsightSnapshot{}, nil
	}
	return s.snapshots.ListByCustomer(ctx, customerID, snapshot.ClampLimit(limit))
}

// LatestInsight returns the most recent stored snapshot without contacting
// the CRM.
func (s *DashboardService) LatestInsight(ctx context.Context, customerID string) (*snapshot.InsightSnapshot, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return nil, fmt.Errorf("no snapshot for %s: %w", customerID, xerrors.ErrNotFound)
	}
	return s.snapshots.Latest(ctx, customerID)
}

func snapshotOf(ci *insight.CustomerInsights) *snapshot.InsightSnapshot {
	snap := &snapshot.InsightSnapshot{
		CustomerID:       ci.CustomerID,
		CreditTier:       string(ci.CreditTier),
		SatisfactionTier: string(ci.SatisfactionTier),
		ValueSegment:     string(ci.ValueSegment),
		SpendingHealth:   string(ci.SpendingRatio.Health),
		Actions:          make([]string, 0, len(ci.Actions)),
		ComputedAt:       time.Now().UTC(),
	}
	if ci.SpendingRatio.Defined {
		ratio := ci.SpendingRatio.Ratio
		snap.SpendingRatio = &ratio
	}
	for _, a := range ci.Actions {
		snap.Actions = append(snap.Actions, string(a.Tag))
	}
	return snap
}
