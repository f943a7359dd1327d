package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// AuctionRepository implements domain.AuctionRepository on PostgreSQL.
// The auction row and its bid rows are written inside one transaction so a
// call either fully commits or fully reverts.
type AuctionRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

func (r *AuctionRepository) Create(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (seller_id, product_id, reserve_price, end_time, min_quantity,
                              bulk_threshold, bulk_discount_pct, dynamic_pricing, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.pool.Exec(ctx, query,
		auction.Seller,
		auction.ProductID,
		auction.ReservePrice,
		auction.EndTime,
		auction.MinQuantity,
		auction.BulkThreshold,
		auction.BulkDiscountPct,
		auction.DynamicPricing,
		auction.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrAuctionAlreadyExists
	}
	return err
}

// Save upserts the auction row and appends any bids not yet persisted.
// Bid history is append-only, so already stored positions never change.
func (r *AuctionRepository) Save(ctx context.Context, auction *domain.Auction) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("save auction: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
        INSERT INTO auctions (seller_id, product_id, reserve_price, end_time, min_quantity,
                              bulk_threshold, bulk_discount_pct, dynamic_pricing, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (seller_id, product_id) DO UPDATE
        SET
            reserve_price = EXCLUDED.reserve_price,
            end_time = EXCLUDED.end_time,
            min_quantity = EXCLUDED.min_quantity,
            bulk_threshold = EXCLUDED.bulk_threshold,
            bulk_discount_pct = EXCLUDED.bulk_discount_pct,
            dynamic_pricing = EXCLUDED.dynamic_pricing;
    `
	_, err = tx.Exec(ctx, query,
		auction.Seller,
		auction.ProductID,
		auction.ReservePrice,
		auction.EndTime,
		auction.MinQuantity,
		auction.BulkThreshold,
		auction.BulkDiscountPct,
		auction.DynamicPricing,
		auction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save auction: %w", err)
	}

	bidQuery := `
        INSERT INTO auction_bids (seller_id, product_id, position, bidder_id, amount, quantity, bid_time)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (seller_id, product_id, position) DO NOTHING
    `
	for i, bid := range auction.Bids {
		_, err = tx.Exec(ctx, bidQuery,
			auction.Seller,
			auction.ProductID,
			i,
			bid.Bidder,
			bid.Amount,
			bid.Quantity,
			bid.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("save auction: bid %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *AuctionRepository) Get(ctx context.Context, key domain.AuctionKey) (*domain.Auction, error) {
	query := `
        SELECT seller_id, product_id, reserve_price, end_time, min_quantity,
               bulk_threshold, bulk_discount_pct, dynamic_pricing, created_at
        FROM auctions
        WHERE seller_id = $1 AND product_id = $2
    `
	auction := &domain.Auction{}
	err := r.pool.QueryRow(ctx, query, key.Seller, key.ProductID).Scan(
		&auction.Seller,
		&auction.ProductID,
		&auction.ReservePrice,
		&auction.EndTime,
		&auction.MinQuantity,
		&auction.BulkThreshold,
		&auction.BulkDiscountPct,
		&auction.DynamicPricing,
		&auction.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}

	if err := r.loadBids(ctx, auction); err != nil {
		return nil, err
	}
	return auction, nil
}

// loadBids restores the history in admission order and recomputes the
// leader: highest total, earliest position on ties.
func (r *AuctionRepository) loadBids(ctx context.Context, auction *domain.Auction) error {
	query := `
        SELECT bidder_id, amount, quantity, bid_time
        FROM auction_bids
        WHERE seller_id = $1 AND product_id = $2
        ORDER BY position ASC
    `
	rows, err := r.pool.Query(ctx, query, auction.Seller, auction.ProductID)
	if err != nil {
		return err
	}
	defer rows.Close()

	auction.Bids = []*domain.Bid{}
	for rows.Next() {
		bid := &domain.Bid{}
		if err := rows.Scan(&bid.Bidder, &bid.Amount, &bid.Quantity, &bid.Timestamp); err != nil {
			return err
		}
		auction.Bids = append(auction.Bids, bid)
		if auction.HighestBid == nil || bid.Amount > auction.HighestBid.Amount {
			auction.HighestBid = bid
		}
	}
	return rows.Err()
}

func (r *AuctionRepository) Delete(ctx context.Context, key domain.AuctionKey) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM auctions WHERE seller_id = $1 AND product_id = $2`,
		key.Seller, key.ProductID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAuctionNotFound
	}
	return nil
}

// CompleteSettlement writes the post-settlement product quantity and
// removes the auction in one transaction. Bids go with the auction via the
// FK cascade. A failure rolls back both writes, so a retried finalize sees
// the pre-settlement state.
func (r *AuctionRepository) CompleteSettlement(ctx context.Context, key domain.AuctionKey, remainingQuantity int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("complete settlement: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE products SET quantity = $3, updated_at = NOW() WHERE seller_id = $1 AND product_id = $2`,
		key.Seller, key.ProductID, remainingQuantity)
	if err != nil {
		return fmt.Errorf("complete settlement: update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	tag, err = tx.Exec(ctx,
		`DELETE FROM auctions WHERE seller_id = $1 AND product_id = $2`,
		key.Seller, key.ProductID)
	if err != nil {
		return fmt.Errorf("complete settlement: delete auction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAuctionNotFound
	}

	return tx.Commit(ctx)
}

func (r *AuctionRepository) ListActive(ctx context.Context) ([]*domain.Auction, error) {
	query := `
        SELECT seller_id, product_id, reserve_price, end_time, min_quantity,
               bulk_threshold, bulk_discount_pct, dynamic_pricing, created_at
        FROM auctions
        ORDER BY end_time ASC
    `
	return r.list(ctx, query)
}

func (r *AuctionRepository) ListEndingSoon(ctx context.Context, threshold time.Duration) ([]*domain.Auction, error) {
	query := `
        SELECT seller_id, product_id, reserve_price, end_time, min_quantity,
               bulk_threshold, bulk_discount_pct, dynamic_pricing, created_at
        FROM auctions
        WHERE end_time <= NOW() + $1
        ORDER BY end_time ASC
    `
	return r.list(ctx, query, threshold)
}

func (r *AuctionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Auction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		auction := &domain.Auction{}
		err := rows.Scan(
			&auction.Seller,
			&auction.ProductID,
			&auction.ReservePrice,
			&auction.EndTime,
			&auction.MinQuantity,
			&auction.BulkThreshold,
			&auction.BulkDiscountPct,
			&auction.DynamicPricing,
			&auction.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, auction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, auction := range auctions {
		if err := r.loadBids(ctx, auction); err != nil {
			return nil, err
		}
	}
	return auctions, nil
}
