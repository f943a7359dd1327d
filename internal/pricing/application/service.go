package application

import (
	"context"
	"fmt"

	"github.com/agromarket/auctionengine/internal/pricing/domain"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/agromarket/auctionengine/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// OracleConfig is passed in explicitly at construction; there is no hidden
// global admin.
type OracleConfig struct {
	Admin uuid.UUID
}

// SuggestPriceDTO is the advisory request: tiers observed for the lot plus
// the current market trend.
type SuggestPriceDTO struct {
	ProductType string
	Region      string
	Quality     domain.QualityGrade
	Freshness   domain.FreshnessRating
	Season      domain.SeasonalStatus
	TrendPct    int64
}

// PricingService exposes the advisory operations: oracle reads and writes,
// price suggestion and market comparison.
type PricingService interface {
	UpdateMarketPrice(ctx context.Context, caller uuid.UUID, price *domain.MarketPrice) error
	GetMarketPrice(ctx context.Context, productType, region string) (*domain.MarketPrice, error)
	SuggestPrice(ctx context.Context, req SuggestPriceDTO) (int64, error)
	CompareWithMarket(ctx context.Context, productType, region string, listed int64) (*domain.MarketComparison, error)
}

type pricingService struct {
	prices     domain.MarketPriceRepository
	clock      clock.Clock
	authorizer auth.Authorizer
	cfg        OracleConfig
}

func NewPricingService(prices domain.MarketPriceRepository, clk clock.Clock,
	authorizer auth.Authorizer, cfg OracleConfig) PricingService {
	return &pricingService{
		prices:     prices,
		clock:      clk,
		authorizer: authorizer,
		cfg:        cfg,
	}
}

// UpdateMarketPrice writes an oracle observation. Only the configured admin
// principal may do this.
func (s *pricingService) UpdateMarketPrice(ctx context.Context, caller uuid.UUID, price *domain.MarketPrice) error {
	if err := s.authorizer.RequireAuth(ctx, caller); err != nil {
		return err
	}
	if caller != s.cfg.Admin {
		log.Warn("Oracle update rejected: not admin",
			zap.String("caller", caller.String()),
			zap.String("productType", price.ProductType),
		)
		return domain.ErrNotOracleAdmin
	}

	price.UpdatedAt = s.clock.Now()
	if err := s.prices.Upsert(ctx, price); err != nil {
		return fmt.Errorf("update market price: %w", err)
	}
	log.Info("Market price updated",
		zap.String("productType", price.ProductType),
		zap.String("region", price.Region),
		zap.Int64("price", price.Price),
	)
	return nil
}

func (s *pricingService) GetMarketPrice(ctx context.Context, productType, region string) (*domain.MarketPrice, error) {
	price, err := s.prices.Get(ctx, productType, region)
	if err != nil {
		return nil, fmt.Errorf("get market price: %w", err)
	}
	return price, nil
}

// SuggestPrice looks up the oracle base price and applies the tier
// adjustments in their fixed order.
func (s *pricingService) SuggestPrice(ctx context.Context, req SuggestPriceDTO) (int64, error) {
	market, err := s.prices.Get(ctx, req.ProductType, req.Region)
	if err != nil {
		return 0, fmt.Errorf("suggest price: %w", err)
	}
	suggested, err := domain.SuggestPrice(market.Price, req.Quality, req.Freshness, req.Season, req.TrendPct)
	if err != nil {
		return 0, fmt.Errorf("suggest price: %w", err)
	}
	return suggested, nil
}

func (s *pricingService) CompareWithMarket(ctx context.Context, productType, region string, listed int64) (*domain.MarketComparison, error) {
	market, err := s.prices.Get(ctx, productType, region)
	if err != nil {
		return nil, fmt.Errorf("compare with market: %w", err)
	}
	cmp := domain.CompareWithMarket(listed, market.Price)
	return &cmp, nil
}
