package domain

import "context"

// MarketPriceRepository is the oracle storage: one price per product type
// and region.
type MarketPriceRepository interface {
	Get(ctx context.Context, productType, region string) (*MarketPrice, error)
	Upsert(ctx context.Context, price *MarketPrice) error
}
