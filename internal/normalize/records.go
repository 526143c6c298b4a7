package normalize

import "crm-insight/internal/domain/customer"

func (r RawRecord) date(field string) (customer.Date, error) {
	s, err := r.requiredString(field)
	if err != nil {
		return customer.Date{}, err
	}
	d, err := customer.ParseDate(s)
	if err != nil {
		return customer.Date{}, fieldError(field, s, "expected DD/MM/YYYY date")
	}
	return d, nil
}

func NormalizeSupportRecord(raw RawRecord) (customer.SupportRecord, error) {
	var (
		rec customer.SupportRecord
		err error
	)
	if rec.ComplaintID, err = raw.requiredString("complaint_id"); err != nil {
		return rec, err
	}
	if rec.CustomerID, err = raw.requiredString("customer_id"); err != nil {
		return rec, err
	}
	if rec.Date, err = raw.date("date"); err != nil {
		return rec, err
	}
	if rec.Transcript, err = raw.optionalString("transcript"); err != nil {
		return rec, err
	}
	if rec.MainConcerns, err = raw.list("main_concerns"); err != nil {
		return rec, err
	}
	if rec.IsRepeatingIssue, err = raw.boolean("is_repeating_issue"); err != nil {
		return rec, err
	}
	if rec.WasIssueResolved, err = raw.boolean("was_issue_resolved"); err != nil {
		return rec, err
	}
	if rec.Sentiment, err = raw.number("sentiment"); err != nil {
		return rec, err
	}
	return rec, nil
}

func NormalizePurchaseRecord(raw RawRecord) (customer.PurchaseRecord, error) {
	var (
		rec customer.PurchaseRecord
		err error
	)
	if rec.TransactionID, err = raw.requiredString("transaction_id"); err != nil {
		return rec, err
	}
	if rec.CustomerID, err = raw.requiredString("customer_id"); err != nil {
		return rec, err
	}
	if rec.Date, err = raw.date("date"); err != nil {
		return rec, err
	}
	if rec.Amt, err = raw.number("amt"); err != nil {
		return rec, err
	}
	if rec.Amt <= 0 {
		return rec, fieldError("amt", raw["amt"], "must be positive")
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"item_category", &rec.ItemCategory},
		{"item_sub_category", &rec.ItemSubCategory},
		{"item_brand", &rec.ItemBrand},
		{"platform", &rec.Platform},
		{"payment_method", &rec.PaymentMethod},
		{"location", &rec.Location},
	} {
		if *f.dst, err = raw.optionalString(f.name); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func NormalizeSocialMediaRecord(raw RawRecord) (customer.SocialMediaRecord, error) {
	var (
		rec customer.SocialMediaRecord
		err error
	)
	if rec.PostID, err = raw.requiredString("post_id"); err != nil {
		return rec, err
	}
	if rec.CustomerID, err = raw.requiredString("customer_id"); err != nil {
		return rec, err
	}
	if rec.Date, err = raw.date("date"); err != nil {
		return rec, err
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"platform", &rec.Platform},
		{"image_url", &rec.ImageURL},
		{"text_content", &rec.TextContent},
		{"feedback_on_financial_products", &rec.FeedbackOnFinancialProducts},
	} {
		if *f.dst, err = raw.optionalString(f.name); err != nil {
			return rec, err
		}
	}
	if rec.TopicsOfInterest, err = raw.list("topics_of_interest"); err != nil {
		return rec, err
	}
	if rec.BrandsLiked, err = raw.list("brands_liked"); err != nil {
		return rec, err
	}
	if rec.SentimentScore, err = raw.number("sentiment_score"); err != nil {
		return rec, err
	}
	if rec.EngagementLevel, err = raw.number("engagement_level"); err != nil {
		return rec, err
	}
	return rec, nil
}
