package application

import (
	"context"
	"testing"
	"time"

	"github.com/agromarket/auctionengine/internal/pricing/domain"
	"github.com/agromarket/auctionengine/internal/pricing/infra/repository/memory"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	oracleAdmin = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")
	randomUser  = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
)

func newService() (PricingService, *clock.Fake) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	repo := memory.NewMarketPriceRepository()
	return NewPricingService(repo, clk, auth.AllowAll{}, OracleConfig{Admin: oracleAdmin}), clk
}

func TestUpdateMarketPriceAdminGate(t *testing.T) {
	service, clk := newService()
	ctx := context.Background()

	err := service.UpdateMarketPrice(ctx, randomUser, &domain.MarketPrice{
		ProductType: "coffee", Region: "narino", Price: 500,
	})
	require.ErrorIs(t, err, domain.ErrNotOracleAdmin)

	err = service.UpdateMarketPrice(ctx, oracleAdmin, &domain.MarketPrice{
		ProductType: "coffee", Region: "narino", Price: 500,
	})
	require.NoError(t, err)

	price, err := service.GetMarketPrice(ctx, "coffee", "narino")
	require.NoError(t, err)
	assert.Equal(t, int64(500), price.Price)
	assert.Equal(t, clk.Now(), price.UpdatedAt)
}

func TestSuggestPriceUsesOracle(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.SuggestPrice(ctx, SuggestPriceDTO{
		ProductType: "coffee", Region: "narino",
		Quality: domain.QualityGradeB, Freshness: domain.FreshnessGood, Season: domain.SeasonNormal,
	})
	require.ErrorIs(t, err, domain.ErrMarketPriceNotFound)

	require.NoError(t, service.UpdateMarketPrice(ctx, oracleAdmin, &domain.MarketPrice{
		ProductType: "coffee", Region: "narino", Price: 1000,
	}))

	suggested, err := service.SuggestPrice(ctx, SuggestPriceDTO{
		ProductType: "coffee", Region: "narino",
		Quality: domain.QualityGradeA, Freshness: domain.FreshnessGood, Season: domain.SeasonNormal,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1150), suggested)
}

func TestCompareWithMarketThroughOracle(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	require.NoError(t, service.UpdateMarketPrice(ctx, oracleAdmin, &domain.MarketPrice{
		ProductType: "cacao", Region: "tumaco", Price: 200,
	}))

	cmp, err := service.CompareWithMarket(ctx, "cacao", "tumaco", 260)
	require.NoError(t, err)
	assert.Equal(t, int64(30), cmp.DeviationPct)
	assert.Equal(t, domain.VerdictOverpriced, cmp.Verdict)
}
