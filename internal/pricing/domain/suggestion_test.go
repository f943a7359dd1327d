package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestPrice(t *testing.T) {
	testcases := []struct {
		name      string
		base      int64
		quality   QualityGrade
		freshness FreshnessRating
		season    SeasonalStatus
		trendPct  int64
		want      int64
	}{
		{
			name:      "all neutral tiers",
			base:      1000,
			quality:   QualityGradeB,
			freshness: FreshnessGood,
			season:    SeasonNormal,
			want:      1000,
		},
		{
			name:      "premium fresh off-season with uptrend",
			base:      1000,
			quality:   QualityPremium,  // 1300
			freshness: FreshnessExcellent, // 1560
			season:    SeasonOff,       // 2028
			trendPct:  5,               // 2129 (integer math)
			want:      2129,
		},
		{
			name:      "rejected stale peak-supply",
			base:      1000,
			quality:   QualityRejected, // 200
			freshness: FreshnessStale,  // 100
			season:    SeasonPeakSupply, // 90
			want:      90,
		},
		{
			name:      "deep downtrend floors at zero",
			base:      100,
			quality:   QualityRejected, // 20
			freshness: FreshnessStale,  // 10
			season:    SeasonPeakSupply, // 9
			trendPct:  -150,
			want:      0,
		},
		{
			name:      "adjustments compound in order not on base",
			base:      200,
			quality:   QualityGradeC,   // 160
			freshness: FreshnessVeryGood, // 176
			season:    SeasonEarly,     // 193 (integer math)
			trendPct:  -10,             // 174
			want:      174,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SuggestPrice(tc.base, tc.quality, tc.freshness, tc.season, tc.trendPct)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSuggestPriceUnknownTier(t *testing.T) {
	_, err := SuggestPrice(1000, "mystery", FreshnessGood, SeasonNormal, 0)
	require.ErrorIs(t, err, ErrUnknownTier)
	_, err = SuggestPrice(1000, QualityGradeB, "mystery", SeasonNormal, 0)
	require.ErrorIs(t, err, ErrUnknownTier)
	_, err = SuggestPrice(1000, QualityGradeB, FreshnessGood, "mystery", 0)
	require.ErrorIs(t, err, ErrUnknownTier)
}

func TestCompareWithMarket(t *testing.T) {
	testcases := []struct {
		name    string
		listed  int64
		market  int64
		wantPct int64
		want    MarketVerdict
	}{
		{name: "well above market", listed: 150, market: 100, wantPct: 50, want: VerdictOverpriced},
		{name: "well below market", listed: 50, market: 100, wantPct: -50, want: VerdictUnderpriced},
		{name: "inside the fair band", listed: 105, market: 100, wantPct: 5, want: VerdictFair},
		{name: "exactly at market", listed: 100, market: 100, wantPct: 0, want: VerdictFair},
		{name: "band edge is still fair", listed: 110, market: 100, wantPct: 10, want: VerdictFair},
		{name: "no market data", listed: 100, market: 0, wantPct: 0, want: VerdictFair},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			cmp := CompareWithMarket(tc.listed, tc.market)
			assert.Equal(t, tc.wantPct, cmp.DeviationPct)
			assert.Equal(t, tc.want, cmp.Verdict)
		})
	}
}
