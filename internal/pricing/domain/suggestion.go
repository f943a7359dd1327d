// Package domain holds the pricing advisory model: a stateless suggestion
// function over oracle market data, composing with auction reserve-price
// setting.
package domain

import (
	"errors"
	"time"
)

var (
	ErrMarketPriceNotFound = errors.New("no market price for this product type and region")
	ErrNotOracleAdmin      = errors.New("caller is not the oracle admin")
	ErrUnknownTier         = errors.New("unknown pricing tier")
)

// MarketPrice is one oracle observation for a product type in a region.
type MarketPrice struct {
	ProductType string    `json:"product_type"`
	Region      string    `json:"region"`
	Price       int64     `json:"price"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QualityGrade adjusts the base price by the certified grade of the lot.
type QualityGrade string

const (
	QualityPremium  QualityGrade = "premium"
	QualityGradeA   QualityGrade = "grade_a"
	QualityGradeB   QualityGrade = "grade_b"
	QualityGradeC   QualityGrade = "grade_c"
	QualityGradeD   QualityGrade = "grade_d"
	QualityRejected QualityGrade = "rejected"
)

// FreshnessRating adjusts for time since harvest.
type FreshnessRating string

const (
	FreshnessExcellent FreshnessRating = "excellent"
	FreshnessVeryGood  FreshnessRating = "very_good"
	FreshnessGood      FreshnessRating = "good"
	FreshnessFair      FreshnessRating = "fair"
	FreshnessPoor      FreshnessRating = "poor"
	FreshnessStale     FreshnessRating = "stale"
)

// SeasonalStatus adjusts for where the harvest sits in its season.
type SeasonalStatus string

const (
	SeasonOff        SeasonalStatus = "off_season"
	SeasonLate       SeasonalStatus = "late_season"
	SeasonEarly      SeasonalStatus = "early_season"
	SeasonNormal     SeasonalStatus = "normal"
	SeasonPeakSupply SeasonalStatus = "peak_supply"
)

var qualityAdjustments = map[QualityGrade]int64{
	QualityPremium:  30,
	QualityGradeA:   15,
	QualityGradeB:   0,
	QualityGradeC:   -20,
	QualityGradeD:   -50,
	QualityRejected: -80,
}

var freshnessAdjustments = map[FreshnessRating]int64{
	FreshnessExcellent: 20,
	FreshnessVeryGood:  10,
	FreshnessGood:      0,
	FreshnessFair:      -15,
	FreshnessPoor:      -30,
	FreshnessStale:     -50,
}

var seasonAdjustments = map[SeasonalStatus]int64{
	SeasonOff:        30,
	SeasonLate:       20,
	SeasonEarly:      10,
	SeasonNormal:     0,
	SeasonPeakSupply: -10,
}

// SuggestPrice derives a recommended unit price from a base market price.
// Adjustments compound in fixed order: quality, then freshness, then season,
// then the signed market trend percent. Each step applies to the previous
// result, not the original base. The final result is floored at zero.
func SuggestPrice(base int64, quality QualityGrade, freshness FreshnessRating,
	season SeasonalStatus, trendPct int64) (int64, error) {
	qAdj, ok := qualityAdjustments[quality]
	if !ok {
		return 0, ErrUnknownTier
	}
	fAdj, ok := freshnessAdjustments[freshness]
	if !ok {
		return 0, ErrUnknownTier
	}
	sAdj, ok := seasonAdjustments[season]
	if !ok {
		return 0, ErrUnknownTier
	}

	price := applyPct(base, qAdj)
	price = applyPct(price, fAdj)
	price = applyPct(price, sAdj)
	price = applyPct(price, trendPct)
	if price < 0 {
		price = 0
	}
	return price, nil
}

func applyPct(price, pct int64) int64 {
	return price + price*pct/100
}

// MarketVerdict classifies a listed price against the market.
type MarketVerdict string

const (
	VerdictUnderpriced MarketVerdict = "underpriced"
	VerdictFair        MarketVerdict = "fair"
	VerdictOverpriced  MarketVerdict = "overpriced"
)

// fair band around the market price, in percent
const fairBandPct = 10

// MarketComparison reports how a listed price sits against the oracle.
type MarketComparison struct {
	ListedPrice  int64         `json:"listed_price"`
	MarketPrice  int64         `json:"market_price"`
	DeviationPct int64         `json:"deviation_pct"`
	Verdict      MarketVerdict `json:"verdict"`
}

// CompareWithMarket computes the signed percent deviation of listed from
// market and classifies it. A zero market price yields a fair verdict with
// zero deviation, since there is nothing to compare against.
func CompareWithMarket(listed, market int64) MarketComparison {
	cmp := MarketComparison{
		ListedPrice: listed,
		MarketPrice: market,
		Verdict:     VerdictFair,
	}
	if market == 0 {
		return cmp
	}
	cmp.DeviationPct = (listed - market) * 100 / market
	switch {
	case cmp.DeviationPct < -fairBandPct:
		cmp.Verdict = VerdictUnderpriced
	case cmp.DeviationPct > fairBandPct:
		cmp.Verdict = VerdictOverpriced
	}
	return cmp
}
