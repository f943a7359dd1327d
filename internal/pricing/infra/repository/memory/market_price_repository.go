package memory

import (
	"context"
	"sync"

	"github.com/agromarket/auctionengine/internal/pricing/domain"
)

type key struct {
	productType string
	region      string
}

// MarketPriceRepository is the map-backed oracle used in tests.
type MarketPriceRepository struct {
	mu     sync.RWMutex
	prices map[key]*domain.MarketPrice
}

func NewMarketPriceRepository() *MarketPriceRepository {
	return &MarketPriceRepository{prices: make(map[key]*domain.MarketPrice)}
}

func (r *MarketPriceRepository) Get(_ context.Context, productType, region string) (*domain.MarketPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	price, ok := r.prices[key{productType, region}]
	if !ok {
		return nil, domain.ErrMarketPriceNotFound
	}
	return price, nil
}

func (r *MarketPriceRepository) Upsert(_ context.Context, price *domain.MarketPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prices[key{price.ProductType, price.Region}] = price
	return nil
}
