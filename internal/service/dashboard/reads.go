package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm-insight/internal/cache"
	"crm-insight/internal/domain/customer"
	"crm-insight/internal/normalize"
	xerrors "crm-insight/internal/pkg/errors"

	"go.uber.org/zap"
)

// RejectedRecord is a history element that failed to decode.
type RejectedRecord struct {
	Index  int                    `json:"index"`
	Error  string                 `json:"error"`
	Detail *normalize.DecodeError `json:"detail,omitempty"`
}

// History is the decoded part of a customer history plus what was rejected.
type History[T any] struct {
	Records  []T              `json:"records"`
	Rejected []RejectedRecord `json:"rejected"`
}

func (s *DashboardService) ListCustomerIDs(ctx context.Context) ([]string, error) {
	ids, err := cache.Fetch(ctx, s.cache, cache.QueryCustomerIDs, "", s.crm.ListCustomerIDs)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *DashboardService) GetProfile(ctx context.Context, customerID string) (*customer.Profile, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}

	raw, err := cache.Fetch(ctx, s.cache, cache.QueryCustomerInfo, customerID, func(ctx context.Context) (normalize.RawRecord, error) {
		return s.crm.GetProfile(ctx, customerID)
	})
	if err != nil {
		return nil, err
	}

	p, err := normalize.NormalizeCustomerProfile(raw)
	if err != nil {
		s.logger.Warn("customer profile rejected",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}

func (s *DashboardService) GetSupportHistory(ctx context.Context, customerID string) (*History[customer.SupportRecord], error) {
	return loadHistory(ctx, s, cache.QuerySupportHistory, customerID, s.crm.GetSupportHistory, normalize.NormalizeSupportRecord)
}

func (s *DashboardService) GetPurchaseHistory(ctx context.Context, customerID string) (*History[customer.PurchaseRecord], error) {
	return loadHistory(ctx, s, cache.QueryPurchaseHistory, customerID, s.crm.GetPurchaseHistory, normalize.NormalizePurchaseRecord)
}

func (s *DashboardService) GetSocialMediaHistory(ctx context.Context, customerID string) (*History[customer.SocialMediaRecord], error) {
	return loadHistory(ctx, s, cache.QuerySocialMediaHistory, customerID, s.crm.GetSocialMediaHistory, normalize.NormalizeSocialMediaRecord)
}

func loadHistory[T any](
	ctx context.Context,
	s *DashboardService,
	q cache.Query,
	customerID string,
	fetch func(context.Context, string) ([]normalize.RawRecord, error),
	decode func(normalize.RawRecord) (T, error),
) (*History[T], error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}

	raws, err := cache.Fetch(ctx, s.cache, q, customerID, func(ctx context.Context) ([]normalize.RawRecord, error) {
		return fetch(ctx, customerID)
	})
	if err != nil {
		return nil, err
	}

	batch := normalize.NormalizeRecordBatch(raws, decode)
	h := &History[T]{Records: batch.OK, Rejected: make([]RejectedRecord, 0, len(batch.Failed))}
	for _, f := range batch.Failed {
		rr := RejectedRecord{Index: f.Index, Error: f.Err.Error()}
		var de *normalize.DecodeError
		if errors.As(f.Err, &de) {
			rr.Detail = de
		}
		h.Rejected = append(h.Rejected, rr)
	}

	if len(h.Rejected) > 0 {
		s.logger.Warn("history records rejected",
			zap.String("customer_id", customerID),
			zap.String("query", string(q)),
			zap.Int("rejected", len(h.Rejected)),
			zap.Int("accepted", len(h.Records)),
		)
	}
	return h, nil
}

func validateCustomerID(customerID string) error {
	if strings.TrimSpace(customerID) == "" {
		return &xerrors.ValidationError{Field: "customer_id", Reason: "required"}
	}
	if strings.ContainsAny(customerID, "/?#") {
		return &xerrors.ValidationError{Field: "customer_id", Reason: fmt.Sprintf("%q contains reserved characters", customerID)}
	}
	return nil
}
