package insight

import (
	"slices"

	"crm-insight/internal/domain/customer"
)

const (
	// RecentLimit caps the per-entry sentiment lists.
	RecentLimit = 5
	// TopProductsLimit caps each product recommendation list.
	TopProductsLimit = 5

	creditScoreMax     = 850
	satisfactionMax    = 10
	highSupportLoadMin = 3
)

type Action struct {
	Tag   ActionTag `json:"tag"`
	Label string    `json:"label"`
}

// EntrySentiment is the classified sentiment of one support or social entry.
type EntrySentiment struct {
	ID    string        `json:"id"`
	Date  customer.Date `json:"date"`
	Score float64       `json:"score"`
	Tier  SentimentTier `json:"tier"`
	Tone  SentimentTone `json:"tone"`
}

// CustomerInsights is the view-model derived for one customer.
type CustomerInsights struct {
	CustomerID string `json:"customer_id"`

	CreditScore        int        `json:"credit_score"`
	CreditScorePercent float64    `json:"credit_score_percent"`
	CreditTier         CreditTier `json:"credit_tier"`

	Satisfaction        float64          `json:"satisfaction"`
	SatisfactionPercent float64          `json:"satisfaction_percent"`
	SatisfactionTier    SatisfactionTier `json:"satisfaction_tier"`

	CurrentBalance  float64       `json:"current_balance"`
	BalanceTrend    Trend         `json:"balance_trend"`
	CurrentLoan     float64       `json:"current_loan"`
	SpendingTrend   Trend         `json:"spending_trend"`
	SpendingRatio   SpendingRatio `json:"spending_ratio"`
	ValueSegment    ValueSegment  `json:"value_segment"`
	HighSupportLoad bool          `json:"high_support_load"`

	Actions []Action `json:"actions"`

	SupportSentiment        []EntrySentiment `json:"support_sentiment"`
	AverageSupportSentiment *float64         `json:"average_support_sentiment,omitempty"`
	UnresolvedIssues        int              `json:"unresolved_issues"`
	RepeatingIssues         int              `json:"repeating_issues"`
	SocialSentiment         []EntrySentiment `json:"social_sentiment"`
	TotalPurchaseAmount     float64          `json:"total_purchase_amount"`
	PurchaseCount           int              `json:"purchase_count"`

	TopProducts        []string `json:"top_products"`
	TopPassiveProducts []string `json:"top_passive_products"`
}

// Summarize builds the full view-model. History slices may be empty or nil.
func Summarize(
	p *customer.Profile,
	support []customer.SupportRecord,
	purchases []customer.PurchaseRecord,
	social []customer.SocialMediaRecord,
) CustomerInsights {
	out := CustomerInsights{
		CreditTier:         CreditUnknown,
		SatisfactionTier:   SatisfactionUnknown,
		BalanceTrend:       TrendUnknown,
		SpendingTrend:      TrendUnknown,
		SpendingRatio:      undefinedRatio,
		ValueSegment:       GrowthPotential,
		Actions:            []Action{},
		SupportSentiment:   []EntrySentiment{},
		SocialSentiment:    []EntrySentiment{},
		TopProducts:        []string{},
		TopPassiveProducts: []string{},
	}

	if p != nil {
		out.CustomerID = p.CustomerID
		out.CreditScore = p.CreditScore
		out.CreditScorePercent = percentOf(float64(p.CreditScore), creditScoreMax)
		out.CreditTier = CreditTierOf(float64(p.CreditScore))
		out.Satisfaction = p.Satisfaction
		out.SatisfactionPercent = percentOf(p.Satisfaction, satisfactionMax)
		out.SatisfactionTier = SatisfactionTierOf(p.Satisfaction)

		out.CurrentBalance, _ = Last(p.Balance)
		out.BalanceTrend = MonthOverMonthTrend(p.Balance)
		out.CurrentLoan, _ = Last(p.LoanAmts)
		out.SpendingTrend = MonthOverMonthTrend(p.MonthlySpending)
		if spend, ok := Last(p.MonthlySpending); ok {
			out.SpendingRatio = SpendingToIncome(spend, p.Income)
		}
		out.ValueSegment = ValueSegmentOf(out.CurrentBalance, float64(p.CreditScore))
		out.HighSupportLoad = p.SupportInteractionCount > highSupportLoadMin

		for _, tag := range RecommendedActions(p) {
			out.Actions = append(out.Actions, Action{Tag: tag, Label: tag.Label()})
		}
		out.TopProducts = head(p.TopNProducts, TopProductsLimit)
		out.TopPassiveProducts = head(p.TopNPassiveProducts, TopProductsLimit)
	}

	var (
		sentimentSum float64
		scored       int
	)
	for _, s := range support {
		if ValidSentiment(s.Sentiment) {
			sentimentSum += s.Sentiment
			scored++
		}
		if !s.WasIssueResolved {
			out.UnresolvedIssues++
		}
		if s.IsRepeatingIssue {
			out.RepeatingIssues++
		}
	}
	if scored > 0 {
		avg := sentimentSum / float64(scored)
		if finite(avg) {
			out.AverageSupportSentiment = &avg
		}
	}
	for _, s := range mostRecent(support, func(r customer.SupportRecord) customer.Date { return r.Date }) {
		out.SupportSentiment = append(out.SupportSentiment, classify(s.ComplaintID, s.Date, s.Sentiment))
	}
	for _, s := range mostRecent(social, func(r customer.SocialMediaRecord) customer.Date { return r.Date }) {
		out.SocialSentiment = append(out.SocialSentiment, classify(s.PostID, s.Date, s.SentimentScore))
	}

	for _, pr := range purchases {
		out.TotalPurchaseAmount += pr.Amt
	}
	out.PurchaseCount = len(purchases)

	return out
}

func classify(id string, date customer.Date, score float64) EntrySentiment {
	return EntrySentiment{ID: id, Date: date, Score: score, Tier: SentimentTierOf(score), Tone: SentimentToneOf(score)}
}

// mostRecent returns up to RecentLimit entries, newest first. Entries on the
// same day keep their upstream order reversed, so later submissions lead.
func mostRecent[T any](records []T, dateOf func(T) customer.Date) []T {
	sorted := slices.Clone(records)
	slices.Reverse(sorted)
	slices.SortStableFunc(sorted, func(a, b T) int {
		da, db := dateOf(a), dateOf(b)
		switch {
		case db.Before(da):
			return -1
		case da.Before(db):
			return 1
		default:
			return 0
		}
	})
	return head(sorted, RecentLimit)
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return append(make([]T, 0, len(s)), s...)
}
