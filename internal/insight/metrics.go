package insight

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendUnknown Trend = "unknown"
)

// MonthOverMonthTrend compares the last two points of a chronological series.
// A flat series reads as Down.
func MonthOverMonthTrend(series []float64) Trend {
	if len(series) < 2 {
		return TrendUnknown
	}
	last, prev := series[len(series)-1], series[len(series)-2]
	if !finite(last) || !finite(prev) {
		return TrendUnknown
	}
	if last > prev {
		return TrendUp
	}
	return TrendDown
}

// Last returns the most recent point of a series.
func Last(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

type SpendingHealth string

const (
	SpendingHealthy SpendingHealth = "healthy"
	SpendingHigh    SpendingHealth = "high"
	SpendingUnknown SpendingHealth = "unknown"
)

// HealthySpendingRatioMax is the exclusive upper bound of a healthy ratio.
const HealthySpendingRatioMax = 0.5

// SpendingRatio is annualised spending over annual income. Ratio and
// Percent are meaningful only when Defined is true.
type SpendingRatio struct {
	Ratio   float64        `json:"ratio"`
	Percent float64        `json:"percent"`
	Defined bool           `json:"defined"`
	Health  SpendingHealth `json:"health"`
}

var undefinedRatio = SpendingRatio{Health: SpendingUnknown}

func SpendingToIncome(monthlySpendingLast, annualIncome float64) SpendingRatio {
	if !finite(monthlySpendingLast) || !finite(annualIncome) || monthlySpendingLast < 0 || annualIncome <= 0 {
		return undefinedRatio
	}
	ratio := monthlySpendingLast * 12 / annualIncome
	health := SpendingHigh
	if ratio < HealthySpendingRatioMax {
		health = SpendingHealthy
	}
	return SpendingRatio{Ratio: ratio, Percent: ratio * 100, Defined: true, Health: health}
}

type ValueSegment string

const (
	HighValue       ValueSegment = "high_value"
	MediumValue     ValueSegment = "medium_value"
	GrowthPotential ValueSegment = "growth_potential"
)

// Balance bounds are exclusive. The HighValue credit bound is exclusive, the
// MediumValue one inclusive.
const (
	HighValueBalance     = 10000
	HighValueCredit      = 750
	MediumValueBalance   = 5000
	MediumValueCreditMin = 700
)

// ValueSegmentOf takes the first matching segment, highest first.
func ValueSegmentOf(currentBalance, creditScore float64) ValueSegment {
	switch {
	case currentBalance > HighValueBalance && creditScore > HighValueCredit:
		return HighValue
	case currentBalance > MediumValueBalance && creditScore >= MediumValueCreditMin:
		return MediumValue
	default:
		return GrowthPotential
	}
}

// percentOf scales v against max into [0, 100].
func percentOf(v, max float64) float64 {
	if !finite(v) || max <= 0 {
		return 0
	}
	p := v / max * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
