package normalize

import "crm-insight/internal/domain/customer"

// NormalizeCustomerProfile decodes a raw profile. The record decodes whole
// or not at all; the first DecodeError encountered is returned.
//
// Required: customer_id, age, income, credit_score, satisfaction and
// support_interaction_count. Every other field may be absent, but a present
// field of the wrong kind is still rejected.
func NormalizeCustomerProfile(raw RawRecord) (*customer.Profile, error) {
	var (
		p   customer.Profile
		err error
	)

	if p.CustomerID, err = raw.requiredString("customer_id"); err != nil {
		return nil, err
	}

	if p.Age, err = raw.integer("age"); err != nil {
		return nil, err
	}
	if p.Age < 0 {
		return nil, fieldError("age", raw["age"], "must not be negative")
	}
	if p.Income, err = raw.number("income"); err != nil {
		return nil, err
	}
	if p.Income < 0 {
		return nil, fieldError("income", raw["income"], "must not be negative")
	}
	if p.CreditScore, err = raw.integer("credit_score"); err != nil {
		return nil, err
	}
	if p.Satisfaction, err = raw.number("satisfaction"); err != nil {
		return nil, err
	}
	if p.SupportInteractionCount, err = raw.integer("support_interaction_count"); err != nil {
		return nil, err
	}
	if p.SupportInteractionCount < 0 {
		return nil, fieldError("support_interaction_count", raw["support_interaction_count"], "must not be negative")
	}
	if p.NumOfChildren, err = raw.optionalInteger("num_of_children"); err != nil {
		return nil, err
	}
	if p.NumOfChildren < 0 {
		return nil, fieldError("num_of_children", raw["num_of_children"], "must not be negative")
	}
	if p.IsMarried, err = raw.optionalBoolean("is_married"); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"gender", &p.Gender},
		{"education", &p.Education},
		{"location", &p.Location},
		{"job", &p.Job},
		{"preferred_payment_method", &p.PreferredPaymentMethod},
	} {
		if *f.dst, err = raw.optionalString(f.name); err != nil {
			return nil, err
		}
	}

	if p.Goals, err = raw.list("goals"); err != nil {
		return nil, err
	}
	if p.MainPurchaseCat, err = raw.list("main_purchase_cat"); err != nil {
		return nil, err
	}
	if p.Balance, err = raw.numericList("balance"); err != nil {
		return nil, err
	}
	if p.LoanAmts, err = raw.numericList("loan_amts"); err != nil {
		return nil, err
	}
	if p.MonthlySpending, err = raw.numericList("monthly_spending"); err != nil {
		return nil, err
	}

	if p.InputParams, err = raw.params("input_params"); err != nil {
		return nil, err
	}
	if p.OutputParams, err = raw.params("output_params"); err != nil {
		return nil, err
	}
	if p.TopNProducts, err = raw.list("top_n_products"); err != nil {
		return nil, err
	}
	if p.TopNPassiveProducts, err = raw.list("top_n_passive_products"); err != nil {
		return nil, err
	}

	return &p, nil
}
