// Package insight derives the dashboard's presentation classifications from
// normalized customer records.
//
// Every function here is pure and total: no I/O, no clock, no shared state.
// Out-of-range or non-finite input yields an Unknown or neutral result
// instead of an error so that one bad metric cannot spoil a whole view.
package insight

import "math"

type CreditTier string

const (
	CreditExcellent CreditTier = "excellent"
	CreditVeryGood  CreditTier = "very_good"
	CreditGood      CreditTier = "good"
	CreditFair      CreditTier = "fair"
	CreditPoor      CreditTier = "poor"
	CreditUnknown   CreditTier = "unknown"
)

type SatisfactionTier string

const (
	SatisfactionExtreme              SatisfactionTier = "extremely_satisfied"
	SatisfactionVery                 SatisfactionTier = "very_satisfied"
	SatisfactionSatisfied            SatisfactionTier = "satisfied"
	SatisfactionSomewhatDissatisfied SatisfactionTier = "somewhat_dissatisfied"
	SatisfactionDissatisfied         SatisfactionTier = "dissatisfied"
	SatisfactionUnknown              SatisfactionTier = "unknown"
)

type SentimentTier string

const (
	SentimentVeryPositive SentimentTier = "very_positive"
	SentimentPositive     SentimentTier = "positive"
	SentimentNeutral      SentimentTier = "neutral"
	SentimentNegative     SentimentTier = "negative"
	SentimentVeryNegative SentimentTier = "very_negative"
	SentimentUnknown      SentimentTier = "unknown"
)

// SentimentTone is the coarse three-band colouring used next to sentiment labels.
type SentimentTone string

const (
	ToneFavourable   SentimentTone = "favourable"
	ToneMixed        SentimentTone = "mixed"
	ToneUnfavourable SentimentTone = "unfavourable"
	ToneUnknown      SentimentTone = "unknown"
)

// Thresholds are inclusive lower bounds.
const (
	CreditExcellentMin = 750
	CreditVeryGoodMin  = 700
	CreditGoodMin      = 650
	CreditFairMin      = 600

	SatisfactionExtremeMin   = 9
	SatisfactionVeryMin      = 7
	SatisfactionSatisfiedMin = 5
	SatisfactionSomewhatMin  = 3

	SentimentVeryPositiveMin = 0.7
	SentimentPositiveMin     = 0.3
	SentimentNeutralMin      = -0.3
	SentimentNegativeMin     = -0.7
)

// Score domains. Anything outside is classified Unknown.
const (
	SatisfactionScoreMin = 0
	SatisfactionScoreMax = 10
	SentimentScoreMin    = -1
	SentimentScoreMax    = 1
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// ValidSentiment reports whether score lies in [-1, 1]. Upstream marks
// unscored entries with sentinels such as -100.
func ValidSentiment(score float64) bool {
	return inRange(score, SentimentScoreMin, SentimentScoreMax)
}

func CreditTierOf(score float64) CreditTier {
	switch {
	case math.IsNaN(score):
		return CreditUnknown
	case score >= CreditExcellentMin:
		return CreditExcellent
	case score >= CreditVeryGoodMin:
		return CreditVeryGood
	case score >= CreditGoodMin:
		return CreditGood
	case score >= CreditFairMin:
		return CreditFair
	default:
		return CreditPoor
	}
}

func SatisfactionTierOf(score float64) SatisfactionTier {
	switch {
	case !inRange(score, SatisfactionScoreMin, SatisfactionScoreMax):
		return SatisfactionUnknown
	case score >= SatisfactionExtremeMin:
		return SatisfactionExtreme
	case score >= SatisfactionVeryMin:
		return SatisfactionVery
	case score >= SatisfactionSatisfiedMin:
		return SatisfactionSatisfied
	case score >= SatisfactionSomewhatMin:
		return SatisfactionSomewhatDissatisfied
	default:
		return SatisfactionDissatisfied
	}
}

// SentimentTierOf classifies support and social sentiment alike.
func SentimentTierOf(score float64) SentimentTier {
	switch {
	case !ValidSentiment(score):
		return SentimentUnknown
	case score >= SentimentVeryPositiveMin:
		return SentimentVeryPositive
	case score >= SentimentPositiveMin:
		return SentimentPositive
	case score >= SentimentNeutralMin:
		return SentimentNeutral
	case score >= SentimentNegativeMin:
		return SentimentNegative
	default:
		return SentimentVeryNegative
	}
}

func SentimentToneOf(score float64) SentimentTone {
	switch {
	case !ValidSentiment(score):
		return ToneUnknown
	case score >= SentimentPositiveMin:
		return ToneFavourable
	case score >= SentimentNeutralMin:
		return ToneMixed
	default:
		return ToneUnfavourable
	}
}
