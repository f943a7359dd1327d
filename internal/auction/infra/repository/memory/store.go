// Package memory provides map-backed implementations of the auction ports.
// They mirror the key-value store the engine was designed against and back
// the unit tests; production wiring uses the postgres package.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/google/uuid"
)

// AuctionRepository keeps auctions in a map keyed by (seller, product).
type AuctionRepository struct {
	mu       sync.RWMutex
	auctions map[domain.AuctionKey]*domain.Auction
	clock    clock.Clock
}

func NewAuctionRepository(clk clock.Clock) *AuctionRepository {
	return &AuctionRepository{
		auctions: make(map[domain.AuctionKey]*domain.Auction),
		clock:    clk,
	}
}

func (r *AuctionRepository) Get(_ context.Context, key domain.AuctionKey) (*domain.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	auction, ok := r.auctions[key]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	return auction, nil
}

func (r *AuctionRepository) Create(_ context.Context, auction *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.auctions[auction.Key()]; ok {
		return domain.ErrAuctionAlreadyExists
	}
	r.auctions[auction.Key()] = auction
	return nil
}

func (r *AuctionRepository) Save(_ context.Context, auction *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[auction.Key()] = auction
	return nil
}

func (r *AuctionRepository) Delete(_ context.Context, key domain.AuctionKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.auctions[key]; !ok {
		return domain.ErrAuctionNotFound
	}
	delete(r.auctions, key)
	return nil
}

func (r *AuctionRepository) ListActive(_ context.Context) ([]*domain.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		out = append(out, a)
	}
	return out, nil
}

func (r *AuctionRepository) ListEndingSoon(_ context.Context, threshold time.Duration) ([]*domain.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cutoff := r.clock.Now().Add(threshold)
	var out []*domain.Auction
	for _, a := range r.auctions {
		if !a.EndTime.After(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

// ProductCatalog keeps product records in a map.
type ProductCatalog struct {
	mu       sync.RWMutex
	products map[domain.AuctionKey]*domain.Product
}

func NewProductCatalog() *ProductCatalog {
	return &ProductCatalog{products: make(map[domain.AuctionKey]*domain.Product)}
}

// PutProduct registers or replaces a product record.
func (c *ProductCatalog) PutProduct(product *domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[domain.AuctionKey{Seller: product.Seller, ProductID: product.ID}] = product
}

func (c *ProductCatalog) GetProduct(_ context.Context, seller, productID uuid.UUID) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	product, ok := c.products[domain.AuctionKey{Seller: seller, ProductID: productID}]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (c *ProductCatalog) setQuantity(seller, productID uuid.UUID, quantity int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	product, ok := c.products[domain.AuctionKey{Seller: seller, ProductID: productID}]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.Quantity = quantity
	return nil
}

// SettlementWriter implements domain.SettlementWriter over the two maps.
// Writes are ordered so a failure on either leaves both stores unchanged,
// matching the all-or-nothing contract the postgres transaction provides.
type SettlementWriter struct {
	auctions *AuctionRepository
	catalog  *ProductCatalog
}

func NewSettlementWriter(auctions *AuctionRepository, catalog *ProductCatalog) *SettlementWriter {
	return &SettlementWriter{auctions: auctions, catalog: catalog}
}

func (w *SettlementWriter) CompleteSettlement(_ context.Context, key domain.AuctionKey, remainingQuantity int64) error {
	w.auctions.mu.Lock()
	defer w.auctions.mu.Unlock()
	if _, ok := w.auctions.auctions[key]; !ok {
		return domain.ErrAuctionNotFound
	}
	if err := w.catalog.setQuantity(key.Seller, key.ProductID, remainingQuantity); err != nil {
		return err
	}
	delete(w.auctions.auctions, key)
	return nil
}
