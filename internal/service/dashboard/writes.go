package dashboard

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"crm-insight/internal/cache"
	"crm-insight/internal/domain/customer"
	"crm-insight/internal/normalize"
	xerrors "crm-insight/internal/pkg/errors"

	"go.uber.org/zap"
)

// MaxInlineImageBytes bounds decoded inline images on social posts.
const MaxInlineImageBytes = 5 << 20

var inlineImageTypes = map[string]bool{
	"png":  true,
	"jpeg": true,
	"jpg":  true,
	"gif":  true,
	"webp": true,
}

// AddSupportRecord submits a support interaction. The suggested complaint
// ID is best-effort; the backend assigns the authoritative one.
func (s *DashboardService) AddSupportRecord(ctx context.Context, customerID string, req *customer.CreateSupportRecordRequest) (*customer.MutationResult, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, &xerrors.ValidationError{Field: "transcript", Reason: "required"}
	}
	concerns, err := encodeTags("main_concerns", req.MainConcerns)
	if err != nil {
		return nil, err
	}

	id := s.nextID(ctx, customerID, customer.SupportIDPrefix, func(ctx context.Context) ([]string, error) {
		h, err := s.GetSupportHistory(ctx, customerID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(h.Records))
		for _, r := range h.Records {
			ids = append(ids, r.ComplaintID)
		}
		return ids, nil
	})

	rec := customer.UpstreamSupportRecord{
		ComplaintID:      id,
		CustomerID:       customerID,
		Date:             date.UpstreamString(),
		Transcript:       req.Transcript,
		MainConcerns:     concerns,
		IsRepeatingIssue: req.IsRepeatingIssue,
		WasIssueResolved: req.WasIssueResolved,
	}
	if err := s.crm.AddSupportRecord(ctx, rec); err != nil {
		return nil, err
	}

	return s.mutated(ctx, cache.OpAddSupportRecord, customerID, id), nil
}

func (s *DashboardService) AddPurchaseRecord(ctx context.Context, customerID string, req *customer.CreatePurchaseRecordRequest) (*customer.MutationResult, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if !(req.Amt > 0) {
		return nil, &xerrors.ValidationError{Field: "amt", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(req.ItemCategory) == "" {
		return nil, &xerrors.ValidationError{Field: "item_category", Reason: "required"}
	}

	id := s.nextID(ctx, customerID, customer.TransactionIDPrefix, func(ctx context.Context) ([]string, error) {
		h, err := s.GetPurchaseHistory(ctx, customerID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(h.Records))
		for _, r := range h.Records {
			ids = append(ids, r.TransactionID)
		}
		return ids, nil
	})

	rec := customer.UpstreamPurchaseRecord{
		TransactionID:   id,
		CustomerID:      customerID,
		Date:            date.UpstreamString(),
		Platform:        req.Platform,
		PaymentMethod:   req.PaymentMethod,
		Amt:             req.Amt,
		Location:        req.Location,
		ItemCategory:    req.ItemCategory,
		ItemSubCategory: req.ItemSubCategory,
		ItemBrand:       req.ItemBrand,
	}
	if err := s.crm.AddPurchaseRecord(ctx, rec); err != nil {
		return nil, err
	}

	return s.mutated(ctx, cache.OpAddPurchaseRecord, customerID, id), nil
}

// AddSocialMediaRecord submits a post. Sentiment is scored by the backend.
func (s *DashboardService) AddSocialMediaRecord(ctx context.Context, customerID string, req *customer.CreateSocialMediaRecordRequest) (*customer.MutationResult, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.TextContent) == "" {
		return nil, &xerrors.ValidationError{Field: "text_content", Reason: "required"}
	}
	topics, err := encodeTags("topics_of_interest", req.TopicsOfInterest)
	if err != nil {
		return nil, err
	}
	if req.Image != "" {
		if err := validateInlineImage(req.Image); err != nil {
			return nil, err
		}
	}

	id := s.nextID(ctx, customerID, customer.PostIDPrefix, func(ctx context.Context) ([]string, error) {
		h, err := s.GetSocialMediaHistory(ctx, customerID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(h.Records))
		for _, r := range h.Records {
			ids = append(ids, r.PostID)
		}
		return ids, nil
	})

	rec := customer.UpstreamSocialMediaRecord{
		PostID:           id,
		CustomerID:       customerID,
		Date:             date.UpstreamString(),
		Platform:         req.Platform,
		ImageURL:         req.ImageURL,
		TextContent:      req.TextContent,
		TopicsOfInterest: topics,
		Feedback:         strings.TrimSpace(req.Feedback),
		Image:            req.Image,
	}
	if err := s.crm.AddSocialMediaRecord(ctx, rec); err != nil {
		return nil, err
	}

	return s.mutated(ctx, cache.OpAddSocialMediaRecord, customerID, id), nil
}

// nextID suggests "<prefix>_<max+1>". When the history cannot be read the
// suggestion starts from one and the backend resolves the conflict.
func (s *DashboardService) nextID(ctx context.Context, customerID, prefix string, existing func(context.Context) ([]string, error)) string {
	ids, err := existing(ctx)
	if err != nil {
		s.logger.Warn("could not read history for next record id",
			zap.String("customer_id", customerID),
			zap.String("prefix", prefix),
			zap.Error(err),
		)
	}
	return customer.NextSequenceID(prefix, ids)
}

func (s *DashboardService) mutated(ctx context.Context, op cache.Operation, customerID, assignedID string) *customer.MutationResult {
	keys := s.cache.Invalidate(ctx, op, customerID)
	s.logger.Info("customer record submitted",
		zap.String("operation", string(op)),
		zap.String("customer_id", customerID),
		zap.String("assigned_id", assignedID),
		zap.Strings("invalidated", keys),
	)
	return &customer.MutationResult{CustomerID: customerID, AssignedID: assignedID}
}

func parseDate(raw string) (customer.Date, error) {
	d, err := customer.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return customer.Date{}, &xerrors.ValidationError{Field: "date", Reason: err.Error()}
	}
	return d, nil
}

// encodeTags rejects tags that would split when comma-joined upstream.
func encodeTags(field string, tags []string) (string, error) {
	for i, t := range tags {
		if strings.Contains(t, ",") {
			return "", &xerrors.ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: "must not contain a comma"}
		}
	}
	return normalize.EncodeListField(tags), nil
}

// validateInlineImage accepts data:image/<type>;base64,<payload>.
func validateInlineImage(dataURL string) error {
	invalid := func(reason string) error {
		return &xerrors.ValidationError{Field: "image", Reason: reason}
	}

	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return invalid("expected a data URL")
	}
	mediaType, found := strings.CutPrefix(header, "data:image/")
	if !found {
		return invalid("expected an image data URL")
	}
	ext, found := strings.CutSuffix(mediaType, ";base64")
	if !found {
		return invalid("image data must be base64 encoded")
	}
	if !inlineImageTypes[strings.ToLower(ext)] {
		return invalid(fmt.Sprintf("unsupported image type %q", ext))
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxInlineImageBytes+2 {
		return invalid("image too large")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return invalid("malformed base64 payload")
	}
	if len(raw) == 0 {
		return invalid("empty image")
	}
	if len(raw) > MaxInlineImageBytes {
		return invalid("image too large")
	}
	return nil
}
