package postgres

import (
	"context"
	"errors"

	"github.com/agromarket/auctionengine/internal/pricing/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MarketPriceRepository implements the oracle storage on PostgreSQL.
type MarketPriceRepository struct {
	pool *pgxpool.Pool
}

func NewMarketPriceRepository(pool *pgxpool.Pool) *MarketPriceRepository {
	return &MarketPriceRepository{pool: pool}
}

func (r *MarketPriceRepository) Get(ctx context.Context, productType, region string) (*domain.MarketPrice, error) {
	query := `
        SELECT product_type, region, price, updated_at
        FROM market_prices
        WHERE product_type = $1 AND region = $2
    `
	price := &domain.MarketPrice{}
	err := r.pool.QueryRow(ctx, query, productType, region).Scan(
		&price.ProductType,
		&price.Region,
		&price.Price,
		&price.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMarketPriceNotFound
		}
		return nil, err
	}
	return price, nil
}

func (r *MarketPriceRepository) Upsert(ctx context.Context, price *domain.MarketPrice) error {
	query := `
        INSERT INTO market_prices (product_type, region, price, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (product_type, region) DO UPDATE
        SET price = EXCLUDED.price, updated_at = EXCLUDED.updated_at;
    `
	_, err := r.pool.Exec(ctx, query, price.ProductType, price.Region, price.Price, price.UpdatedAt)
	return err
}
