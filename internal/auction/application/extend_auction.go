package application

import (
	"context"
	"fmt"
	"time"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/google/uuid"
)

// ExtendAuctionDTO moves an auction deadline forward.
type ExtendAuctionDTO struct {
	Seller     uuid.UUID
	ProductID  uuid.UUID
	NewEndTime time.Time
}

// ExtendAuctionUseCase lets the seller push the deadline out; existing bids
// stay valid.
type ExtendAuctionUseCase struct {
	auctions   domain.AuctionRepository
	catalog    domain.ProductCatalog
	clock      clock.Clock
	authorizer auth.Authorizer
	events     domain.EventPublisher
}

func NewExtendAuctionUseCase(auctions domain.AuctionRepository, catalog domain.ProductCatalog,
	clk clock.Clock, authorizer auth.Authorizer, events domain.EventPublisher) *ExtendAuctionUseCase {
	return &ExtendAuctionUseCase{
		auctions:   auctions,
		catalog:    catalog,
		clock:      clk,
		authorizer: authorizer,
		events:     events,
	}
}

func (uc *ExtendAuctionUseCase) Execute(ctx context.Context, cmd ExtendAuctionDTO) error {
	if err := uc.authorizer.RequireAuth(ctx, cmd.Seller); err != nil {
		return err
	}

	key := domain.AuctionKey{Seller: cmd.Seller, ProductID: cmd.ProductID}
	auction, err := uc.auctions.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("extend auction: %w", err)
	}

	product, err := uc.catalog.GetProduct(ctx, cmd.Seller, cmd.ProductID)
	if err != nil {
		return fmt.Errorf("extend auction: %w", err)
	}

	now := uc.clock.Now()
	if err := auction.Extend(cmd.NewEndTime, product.ExpiryDate, now); err != nil {
		return fmt.Errorf("extend auction %s: %w", key, err)
	}

	if err := uc.auctions.Save(ctx, auction); err != nil {
		return fmt.Errorf("extend auction: save %s: %w", key, err)
	}

	uc.events.Publish(ctx, domain.Event{
		Type:      domain.EventAuctionExtended,
		Seller:    cmd.Seller,
		ProductID: cmd.ProductID,
		At:        now,
	})
	return nil
}
