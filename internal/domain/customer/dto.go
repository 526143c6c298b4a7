// internal/domain/customer/dto.go
package customer

import (
	"fmt"
	"strconv"
	"strings"
)

// Record ID prefixes used by the upstream CRM backend.
const (
	SupportIDPrefix     = "SPRT"
	TransactionIDPrefix = "TXN"
	PostIDPrefix        = "POST"
)

type CreateSupportRecordRequest struct {
	Date             string   `json:"date" binding:"required"`
	Transcript       string   `json:"transcript" binding:"required"`
	MainConcerns     []string `json:"main_concerns"`
	IsRepeatingIssue bool     `json:"is_repeating_issue"`
	WasIssueResolved bool     `json:"was_issue_resolved"`
}

type CreatePurchaseRecordRequest struct {
	Date            string  `json:"date" binding:"required"`
	ItemCategory    string  `json:"item_category" binding:"required,max=255"`
	ItemSubCategory string  `json:"item_sub_category" binding:"max=255"`
	ItemBrand       string  `json:"item_brand" binding:"max=255"`
	Amt             float64 `json:"amt" binding:"required,gt=0"`
	Platform        string  `json:"platform" binding:"required"`
	PaymentMethod   string  `json:"payment_method" binding:"required"`
	Location        string  `json:"location"`
}

type CreateSocialMediaRecordRequest struct {
	Date             string   `json:"date" binding:"required"`
	Platform         string   `json:"platform" binding:"required"`
	TextContent      string   `json:"text_content" binding:"required"`
	TopicsOfInterest []string `json:"topics_of_interest"`
	ImageURL         string   `json:"image_url" binding:"omitempty,url"`
	Feedback         string   `json:"feedback_on_financial_products" binding:"max=2000"`
	// Image is an optional inline data URL (data:image/<ext>;base64,...).
	Image string `json:"image"`
}

// Upstream write payloads. List fields travel comma-joined and dates as DD/MM/YYYY.

type UpstreamSupportRecord struct {
	ComplaintID      string `json:"complaint_id"`
	CustomerID       string `json:"customer_id"`
	Date             string `json:"date"`
	Transcript       string `json:"transcript"`
	MainConcerns     string `json:"main_concerns"`
	IsRepeatingIssue bool   `json:"is_repeating_issue"`
	WasIssueResolved bool   `json:"was_issue_resolved"`
}

type UpstreamPurchaseRecord struct {
	TransactionID   string  `json:"transaction_id"`
	CustomerID      string  `json:"customer_id"`
	Date            string  `json:"date"`
	Platform        string  `json:"platform"`
	PaymentMethod   string  `json:"payment_method"`
	Amt             float64 `json:"amt"`
	Location        string  `json:"location"`
	ItemCategory    string  `json:"item_category"`
	ItemSubCategory string  `json:"item_sub_category"`
	ItemBrand       string  `json:"item_brand"`
}

type UpstreamSocialMediaRecord struct {
	PostID           string `json:"post_id"`
	CustomerID       string `json:"customer_id"`
	Date             string `json:"date"`
	Platform         string `json:"platform"`
	ImageURL         string `json:"image_url"`
	TextContent      string `json:"text_content"`
	TopicsOfInterest string `json:"topics_of_interest"`
	Feedback         string `json:"feedback_on_financial_products"`
	Image            string `json:"image,omitempty"`
}

// MutationResult is the upstream acknowledgement of a write or an AI run.
type MutationResult struct {
	CustomerID string `json:"customer_id"`
	// AssignedID is the client-suggested record ID; the upstream copy is authoritative.
	AssignedID string `json:"assigned_id,omitempty"`
	RunID      string `json:"run_id,omitempty"`
}

// NextSequenceID returns "<prefix>_<max+1>" over IDs of the form "<prefix>_<n>".
// IDs that do not follow the pattern are ignored.
func NextSequenceID(prefix string, existing []string) string {
	last := 0
	for _, id := range existing {
		head, tail, ok := strings.Cut(id, "_")
		if !ok || head != prefix {
			continue
		}
		n, err := strconv.Atoi(tail)
		if err != nil {
			continue
		}
		if n > last {
			last = n
		}
	}
	return fmt.Sprintf("%s_%d", prefix, last+1)
}
