package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuctionRepository persists the aggregate. Create must fail with
// ErrAuctionAlreadyExists on a duplicate key, Get with ErrAuctionNotFound.
type AuctionRepository interface {
	Get(ctx context.Context, key AuctionKey) (*Auction, error)
	Create(ctx context.Context, auction *Auction) error
	Save(ctx context.Context, auction *Auction) error
	Delete(ctx context.Context, key AuctionKey) error
	ListActive(ctx context.Context) ([]*Auction, error)
	ListEndingSoon(ctx context.Context, threshold time.Duration) ([]*Auction, error)
}

// ProductCatalog is the read side of the product collaborator. The one
// write the engine performs, the quantity decrement at settlement, goes
// through the SettlementWriter instead.
type ProductCatalog interface {
	GetProduct(ctx context.Context, seller, productID uuid.UUID) (*Product, error)
}

// SettlementWriter commits the terminal settlement write. Both effects,
// the remaining product quantity and the auction removal, must land
// atomically: a failed call leaves the auction finalizable again with the
// stock untouched.
type SettlementWriter interface {
	CompleteSettlement(ctx context.Context, key AuctionKey, remainingQuantity int64) error
}
