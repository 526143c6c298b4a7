package normalize

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// raw decodes a JSON object the way the upstream client does.
func raw(t *testing.T, body string) RawRecord {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var r RawRecord
	if err := dec.Decode(&r); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return r
}

func TestDecodeListField(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a, b ,c", []string{"a", "b", "c"}},
		{"", []string{}},
		{"   ", []string{}},
		{"retirement", []string{"retirement"}},
		{"a,,b,", []string{"a", "b"}},
		{"  save for down payment on house ,retirement", []string{"save for down payment on house", "retirement"}},
		// decomposed e + combining acute composes to a single rune
		{"cafe\u0301, tea", []string{"caf\u00e9", "tea"}},
	}

	for _, tt := range tests {
		got := DecodeListField(tt.in)
		if got == nil {
			t.Fatalf("DecodeListField(%q) returned nil", tt.in)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("DecodeListField(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestDecodeNumericListField(t *testing.T) {
	got, err := DecodeNumericListField("balance", " 100, 200.5 ,-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []float64{100, 200.5, -3}) {
		t.Errorf("got %v", got)
	}

	empty, err := DecodeNumericListField("balance", "")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty input: got %v, %v", empty, err)
	}
}

func TestDecodeNumericListFieldReportsFailingElement(t *testing.T) {
	tests := []struct {
		in        string
		wantIndex int
		wantRaw   string
	}{
		{"1,2,x", 2, "x"},
		{"1,,2", 1, ""},
		{"NaN,1", 0, "NaN"},
		{"1, 2, Inf", 2, "Inf"},
	}

	for _, tt := range tests {
		got, err := DecodeNumericListField("loan_amts", tt.in)
		if got != nil {
			t.Errorf("%q: expected no values, got %v", tt.in, got)
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("%q: expected *DecodeError, got %v", tt.in, err)
		}
		if de.Field != "loan_amts" || de.Index != tt.wantIndex || de.RawValue != tt.wantRaw {
			t.Errorf("%q: got %+v", tt.in, de)
		}
	}
}

func TestEncodeListField(t *testing.T) {
	if got := EncodeListField([]string{" billing ", "", "card"}); got != "billing,card" {
		t.Errorf("EncodeListField() = %q", got)
	}
	if got := EncodeListField(nil); got != "" {
		t.Errorf("EncodeListField(nil) = %q", got)
	}
}

const validProfile = `{
	"customer_id": "CUST001",
	"age": 41,
	"gender": "Female",
	"education": "Masters",
	"is_married": true,
	"num_of_children": 2,
	"location": "Austin, TX",
	"job": "Engineer",
	"income": 60000,
	"goals": "retirement, save for down payment on house",
	"preferred_payment_method": "Credit Card",
	"balance": "100,200",
	"loan_amts": "0,500",
	"monthly_spending": "1000,1200",
	"credit_score": 720,
	"main_purchase_cat": "Electronics,Travel",
	"support_interaction_count": 5,
	"satisfaction": 6,
	"output_params": "{\"risk_customer\": 3.5, \"value_customer\": 7}",
	"top_n_products": "P12,P3,P40",
	"top_n_passive_products": ""
}`

func TestNormalizeCustomerProfile(t *testing.T) {
	p, err := NormalizeCustomerProfile(raw(t, validProfile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.CustomerID != "CUST001" || p.Age != 41 || p.CreditScore != 720 || !p.IsMarried {
		t.Errorf("scalars not decoded: %+v", p)
	}
	if !reflect.DeepEqual(p.Balance, []float64{100, 200}) {
		t.Errorf("Balance = %v", p.Balance)
	}
	if !reflect.DeepEqual(p.Goals, []string{"retirement", "save for down payment on house"}) {
		t.Errorf("Goals = %#v", p.Goals)
	}
	if !reflect.DeepEqual(p.LoanAmts, []float64{0, 500}) {
		t.Errorf("LoanAmts = %v", p.LoanAmts)
	}
	if p.OutputParams["risk_customer"] != 3.5 || p.OutputParams["value_customer"] != 7 {
		t.Errorf("OutputParams = %v", p.OutputParams)
	}
	if p.InputParams != nil {
		t.Errorf("InputParams = %v, want nil", p.InputParams)
	}
	if !reflect.DeepEqual(p.TopNProducts, []string{"P12", "P3", "P40"}) {
		t.Errorf("TopNProducts = %v", p.TopNProducts)
	}
	if p.TopNPassiveProducts == nil || len(p.TopNPassiveProducts) != 0 {
		t.Errorf("TopNPassiveProducts = %#v, want empty", p.TopNPassiveProducts)
	}
}

func TestNormalizeCustomerProfileOptionalFields(t *testing.T) {
	r := raw(t, validProfile)
	for _, f := range []string{"goals", "main_purchase_cat", "balance", "loan_amts", "monthly_spending", "job"} {
		delete(r, f)
	}
	r["top_n_products"] = nil

	p, err := NormalizeCustomerProfile(r)
	if err != nil {
		t.Fatalf("absent optional fields must not fail: %v", err)
	}
	for name, l := range map[string]int{
		"goals":            len(p.Goals),
		"main_purchase":    len(p.MainPurchaseCat),
		"balance":          len(p.Balance),
		"loan_amts":        len(p.LoanAmts),
		"monthly_spending": len(p.MonthlySpending),
		"top_n_products":   len(p.TopNProducts),
	} {
		if l != 0 {
			t.Errorf("%s: expected empty, got len %d", name, l)
		}
	}
	if p.Goals == nil || p.Balance == nil || p.TopNProducts == nil {
		t.Error("absent lists must decode to empty, not nil")
	}
}

func TestNormalizeCustomerProfileLooseTypes(t *testing.T) {
	r := raw(t, validProfile)
	r["age"] = "41"
	r["credit_score"] = json.Number("720.0")
	r["is_married"] = "False"
	r["balance"] = json.Number("5500")

	p, err := NormalizeCustomerProfile(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Age != 41 || p.CreditScore != 720 || p.IsMarried {
		t.Errorf("loose scalars: %+v", p)
	}
	if !reflect.DeepEqual(p.Balance, []float64{5500}) {
		t.Errorf("single-value series: %v", p.Balance)
	}
}

func TestNormalizeCustomerProfileRejects(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		value     any
		wantField string
		wantIndex int
	}{
		{"missing id", "customer_id", nil, "customer_id", -1},
		{"age not integer", "age", json.Number("41.5"), "age", -1},
		{"age not numeric", "age", "forty", "age", -1},
		{"negative age", "age", json.Number("-1"), "age", -1},
		{"income missing", "income", nil, "income", -1},
		{"credit score string", "credit_score", "good", "credit_score", -1},
		{"satisfaction bool", "satisfaction", true, "satisfaction", -1},
		{"malformed balance", "balance", "100,abc", "balance", 1},
		{"malformed spending", "monthly_spending", "x", "monthly_spending", 0},
		{"goals wrong kind", "goals", json.Number("3"), "goals", -1},
		{"bad params", "input_params", "{not json", "input_params", -1},
		{"married not bool", "is_married", "maybe", "is_married", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := raw(t, validProfile)
			if tt.value == nil {
				delete(r, tt.field)
			} else {
				r[tt.field] = tt.value
			}

			p, err := NormalizeCustomerProfile(r)
			if p != nil {
				t.Fatal("partial record returned")
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %v", err)
			}
			if de.Field != tt.wantField || de.Index != tt.wantIndex {
				t.Errorf("got field=%s index=%d", de.Field, de.Index)
			}
		})
	}
}

func TestNormalizeSupportRecord(t *testing.T) {
	rec, err := NormalizeSupportRecord(raw(t, `{
		"complaint_id": "SPRT_7", "customer_id": "CUST001", "date": "14/02/2024",
		"transcript": "Card declined twice", "main_concerns": "card declined, fees",
		"is_repeating_issue": "True", "was_issue_resolved": false, "sentiment": "-0.4"
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Date.String() != "2024-02-14" || !rec.IsRepeatingIssue || rec.Sentiment != -0.4 {
		t.Errorf("got %+v", rec)
	}
	if !reflect.DeepEqual(rec.MainConcerns, []string{"card declined", "fees"}) {
		t.Errorf("MainConcerns = %v", rec.MainConcerns)
	}
}

func TestNormalizePurchaseRecordRejectsNonPositiveAmount(t *testing.T) {
	_, err := NormalizePurchaseRecord(raw(t, `{
		"transaction_id": "TXN_1", "customer_id": "CUST001", "date": "2024-01-02", "amt": 0
	}`))
	var de *DecodeError
	if !errors.As(err, &de) || de.Field != "amt" {
		t.Fatalf("expected amt DecodeError, got %v", err)
	}
}

func TestNormalizeSocialMediaRecord(t *testing.T) {
	rec, err := NormalizeSocialMediaRecord(raw(t, `{
		"post_id": "POST_3", "customer_id": "CUST001", "date": "01/03/2024", "platform": "Twitter",
		"image_url": "http://example.com/image7.jpg", "text_content": "Loving the new app",
		"topics_of_interest": "Technology, Finance", "brands_liked": ["Apple", " Visa "],
		"sentiment_score": 0.8, "engagement_level": "0.5"
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(rec.BrandsLiked, []string{"Apple", "Visa"}) {
		t.Errorf("BrandsLiked = %v", rec.BrandsLiked)
	}
	if rec.HasImage() {
		t.Error("placeholder image reported as real")
	}
	if rec.EngagementLevel != 0.5 {
		t.Errorf("EngagementLevel = %v", rec.EngagementLevel)
	}
}

func TestNormalizeRecordBatchIsolatesFailures(t *testing.T) {
	raws := []RawRecord{
		raw(t, `{"transaction_id": "TXN_1", "customer_id": "C1", "date": "01/01/2024", "amt": 10}`),
		raw(t, `{"transaction_id": "TXN_2", "customer_id": "C1", "date": "01/01/2024", "amt": "ten"}`),
		raw(t, `{"transaction_id": "TXN_3", "customer_id": "C1", "date": "02/01/2024", "amt": 30}`),
	}

	b := NormalizeRecordBatch(raws, NormalizePurchaseRecord)

	if len(b.OK) != 2 {
		t.Fatalf("OK = %d, want 2", len(b.OK))
	}
	if b.OK[0].TransactionID != "TXN_1" || b.OK[1].TransactionID != "TXN_3" {
		t.Errorf("order not preserved: %s, %s", b.OK[0].TransactionID, b.OK[1].TransactionID)
	}
	if len(b.Failed) != 1 || b.Failed[0].Index != 1 {
		t.Fatalf("Failed = %+v", b.Failed)
	}
	var de *DecodeError
	if !errors.As(b.Failed[0].Err, &de) || de.Field != "amt" {
		t.Errorf("failure not attributed: %v", b.Failed[0].Err)
	}
}

func TestNormalizeRecordBatchEmpty(t *testing.T) {
	b := NormalizeRecordBatch(nil, NormalizeSupportRecord)
	if b.OK == nil || b.Failed == nil || len(b.OK) != 0 || len(b.Failed) != 0 {
		t.Errorf("empty batch = %+v", b)
	}
}
