package postgres

import (
	"context"
	"errors"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductCatalog implements domain.ProductCatalog on the products table.
// It is read-only: the settlement quantity write happens inside the
// auction repository's settlement transaction.
type ProductCatalog struct {
	pool *pgxpool.Pool
}

func NewProductCatalog(pool *pgxpool.Pool) *ProductCatalog {
	return &ProductCatalog{pool: pool}
}

func (c *ProductCatalog) GetProduct(ctx context.Context, seller, productID uuid.UUID) (*domain.Product, error) {
	query := `
        SELECT seller_id, product_id, product_type, region, price, quantity, expiry_date
        FROM products
        WHERE seller_id = $1 AND product_id = $2
    `
	product := &domain.Product{}
	err := c.pool.QueryRow(ctx, query, seller, productID).Scan(
		&product.Seller,
		&product.ID,
		&product.Type,
		&product.Region,
		&product.Price,
		&product.Quantity,
		&product.ExpiryDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
