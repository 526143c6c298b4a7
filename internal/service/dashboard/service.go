// internal/service/dashboard/service.go
package dashboard

import (
	"context"
	"time"

	"crm-insight/internal/cache"
	"crm-insight/internal/domain/customer"
	"crm-insight/internal/domain/snapshot"
	"crm-insight/internal/normalize"

	"go.uber.org/zap"
)

// CRM is the upstream backend. Implemented by crmapi.Client.
type CRM interface {
	ListCustomerIDs(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, customerID string) (normalize.RawRecord, error)
	GetSupportHistory(ctx context.Context, customerID string) ([]normalize.RawRecord, error)
	GetPurchaseHistory(ctx context.Context, customerID string) ([]normalize.RawRecord, error)
	GetSocialMediaHistory(ctx context.Context, customerID string) ([]normalize.RawRecord, error)
	AddSupportRecord(ctx context.Context, rec customer.UpstreamSupportRecord) error
	AddPurchaseRecord(ctx context.Context, rec customer.UpstreamPurchaseRecord) error
	AddSocialMediaRecord(ctx context.Context, rec customer.UpstreamSocialMediaRecord) error
	RunAI(ctx context.Context, customerID string) error
}

type SnapshotStore interface {
	Create(ctx context.Context, s *snapshot.InsightSnapshot) error
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*snapshot.InsightSnapshot, error)
	Latest(ctx context.Context, customerID string) (*snapshot.InsightSnapshot, error)
}

type RunStore interface {
	Create(ctx context.Context, run *snapshot.AIRun) error
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*snapshot.AIRun, error)
}

// Limiter throttles an operation per key. Implemented by session.RateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
	Reset(ctx context.Context, key string) error
}

// DashboardService serves the operator dashboard. Snapshot and run stores
// are optional; without them insights are computed but not recorded.
type DashboardService struct {
	crm       CRM
	cache     *cache.QueryCache
	snapshots SnapshotStore
	runs      RunStore
	logger    *zap.Logger

	aiLimiter Limiter
	aiLimit   int64
	aiWindow  time.Duration
}

func NewDashboardService(crm CRM, qc *cache.QueryCache, snapshots SnapshotStore, runs RunStore, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		crm:       crm,
		cache:     qc,
		snapshots: snapshots,
		runs:      runs,
		logger:    logger,
	}
}

// WithAIRunLimit caps RunAI at limit calls per customer per window. A zero
// limit disables the cap.
func (s *DashboardService) WithAIRunLimit(l Limiter, limit int, window time.Duration) *DashboardService {
	s.aiLimiter = l
	s.aiLimit = int64(limit)
	s.aiWindow = window
	return s
}
