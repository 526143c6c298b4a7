// internal/domain/customer/entity.go
package customer

import (
	"net/url"
	"strings"
)

// Profile is the typed customer record produced by the normalizer.
// Financial series are chronological, most recent last.
type Profile struct {
	CustomerID string `json:"customer_id"`

	// Demographics
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	Education     string `json:"education"`
	IsMarried     bool   `json:"is_married"`
	NumOfChildren int    `json:"num_of_children"`
	Location      string `json:"location"`

	// Employment / income
	Job    string  `json:"job"`
	Income float64 `json:"income"`

	// Behaviour
	Goals                  []string `json:"goals"`
	PreferredPaymentMethod string   `json:"preferred_payment_method"`

	// Financial series
	Balance         []float64 `json:"balance"`
	LoanAmts        []float64 `json:"loan_amts"`
	MonthlySpending []float64 `json:"monthly_spending"`

	CreditScore             int      `json:"credit_score"`
	MainPurchaseCat         []string `json:"main_purchase_cat"`
	SupportInteractionCount int      `json:"support_interaction_count"`
	Satisfaction            float64  `json:"satisfaction"`

	// AI-linked, display only
	InputParams         map[string]float64 `json:"input_params,omitempty"`
	OutputParams        map[string]float64 `json:"output_params,omitempty"`
	TopNProducts        []string           `json:"top_n_products"`
	TopNPassiveProducts []string           `json:"top_n_passive_products"`
}

// HasGoal reports whether the profile lists goal verbatim.
func (p *Profile) HasGoal(goal string) bool {
	for _, g := range p.Goals {
		if g == goal {
			return true
		}
	}
	return false
}

type SupportRecord struct {
	ComplaintID      string   `json:"complaint_id"`
	CustomerID       string   `json:"customer_id"`
	Date             Date     `json:"date"`
	Transcript       string   `json:"transcript"`
	MainConcerns     []string `json:"main_concerns"`
	IsRepeatingIssue bool     `json:"is_repeating_issue"`
	WasIssueResolved bool     `json:"was_issue_resolved"`
	Sentiment        float64  `json:"sentiment"`
}

type PurchaseRecord struct {
	TransactionID   string  `json:"transaction_id"`
	CustomerID      string  `json:"customer_id"`
	Date            Date    `json:"date"`
	ItemCategory    string  `json:"item_category"`
	ItemSubCategory string  `json:"item_sub_category"`
	ItemBrand       string  `json:"item_brand"`
	Amt             float64 `json:"amt"`
	Platform        string  `json:"platform"`
	PaymentMethod   string  `json:"payment_method"`
	Location        string  `json:"location,omitempty"`
}

type SocialMediaRecord struct {
	PostID                      string   `json:"post_id"`
	CustomerID                  string   `json:"customer_id"`
	Date                        Date     `json:"date"`
	Platform                    string   `json:"platform"`
	ImageURL                    string   `json:"image_url"`
	TextContent                 string   `json:"text_content"`
	TopicsOfInterest            []string `json:"topics_of_interest"`
	BrandsLiked                 []string `json:"brands_liked"`
	FeedbackOnFinancialProducts string   `json:"feedback_on_financial_products,omitempty"`
	SentimentScore              float64  `json:"sentiment_score"`
	EngagementLevel             float64  `json:"engagement_level"`
}

// PlaceholderImageDomain marks generated image URLs that point at no real image.
const PlaceholderImageDomain = "example.com"

// HasImage is false for empty, unparseable and placeholder image URLs.
// Relative URLs point at images uploaded to the CRM backend.
func (s *SocialMediaRecord) HasImage() bool {
	if strings.TrimSpace(s.ImageURL) == "" {
		return false
	}
	u, err := url.Parse(s.ImageURL)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return u.Path != ""
	}
	host := strings.ToLower(u.Hostname())
	return host != PlaceholderImageDomain && !strings.HasSuffix(host, "."+PlaceholderImageDomain)
}
