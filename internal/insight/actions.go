package insight

import "crm-insight/internal/domain/customer"

type ActionTag string

const (
	ActionCreditImprovement    ActionTag = "credit_improvement"
	ActionHomeSavings          ActionTag = "home_savings"
	ActionEducationSavings     ActionTag = "education_savings"
	ActionRetirementPlanning   ActionTag = "retirement_planning"
	ActionSatisfactionFollowUp ActionTag = "satisfaction_follow_up"
	ActionServiceQualityReview ActionTag = "service_quality_review"
	ActionLoanRefinancing      ActionTag = "loan_refinancing"
)

// Goal tags that trigger savings and planning actions.
const (
	GoalHomeDownPayment   = "save for down payment on house"
	GoalChildrenEducation = "children's education"
	GoalRetirement        = "retirement"
)

const (
	creditImprovementBelow    = 700
	satisfactionFollowUpBelow = 8
	serviceReviewAbove        = 3
)

// actionRules is evaluated in order; output order follows it exactly.
var actionRules = []struct {
	tag     ActionTag
	applies func(p *customer.Profile) bool
}{
	{ActionCreditImprovement, func(p *customer.Profile) bool { return p.CreditScore < creditImprovementBelow }},
	{ActionHomeSavings, func(p *customer.Profile) bool { return p.HasGoal(GoalHomeDownPayment) }},
	{ActionEducationSavings, func(p *customer.Profile) bool { return p.HasGoal(GoalChildrenEducation) }},
	{ActionRetirementPlanning, func(p *customer.Profile) bool { return p.HasGoal(GoalRetirement) }},
	{ActionSatisfactionFollowUp, func(p *customer.Profile) bool { return p.Satisfaction < satisfactionFollowUpBelow }},
	{ActionServiceQualityReview, func(p *customer.Profile) bool { return p.SupportInteractionCount > serviceReviewAbove }},
	{ActionLoanRefinancing, func(p *customer.Profile) bool {
		loan, ok := Last(p.LoanAmts)
		return ok && loan > 0
	}},
}

// RecommendedActions returns every triggered action in rule order.
func RecommendedActions(p *customer.Profile) []ActionTag {
	out := []ActionTag{}
	if p == nil {
		return out
	}
	for _, rule := range actionRules {
		if rule.applies(p) {
			out = append(out, rule.tag)
		}
	}
	return out
}

// Labels shown to operators.
var actionLabels = map[ActionTag]string{
	ActionCreditImprovement:    "Credit improvement consultation",
	ActionHomeSavings:          "Home savings plan",
	ActionEducationSavings:     "Education savings plan",
	ActionRetirementPlanning:   "Retirement planning consultation",
	ActionSatisfactionFollowUp: "Customer satisfaction follow-up",
	ActionServiceQualityReview: "Service quality review",
	ActionLoanRefinancing:      "Loan refinancing options",
}

func (a ActionTag) Label() string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}
