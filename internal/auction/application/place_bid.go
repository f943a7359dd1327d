package application

import (
	"context"
	"fmt"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceBidDTO carries the data needed to admit one bid.
type PlaceBidDTO struct {
	Seller    uuid.UUID
	ProductID uuid.UUID
	Bidder    uuid.UUID
	Amount    int64 // total offered, not per unit
	Quantity  int64
}

// PlaceBidUseCase admits a competitive bid against a live auction.
type PlaceBidUseCase struct {
	auctions   domain.AuctionRepository
	catalog    domain.ProductCatalog
	clock      clock.Clock
	authorizer auth.Authorizer
	events     domain.EventPublisher
}

func NewPlaceBidUseCase(auctions domain.AuctionRepository, catalog domain.ProductCatalog,
	clk clock.Clock, authorizer auth.Authorizer, events domain.EventPublisher) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		auctions:   auctions,
		catalog:    catalog,
		clock:      clk,
		authorizer: authorizer,
		events:     events,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	if err := uc.authorizer.RequireAuth(ctx, cmd.Bidder); err != nil {
		return nil, err
	}

	key := domain.AuctionKey{Seller: cmd.Seller, ProductID: cmd.ProductID}
	auction, err := uc.auctions.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("place bid: %w", err)
	}

	// quantity is checked against the product snapshot at this instant;
	// the authoritative decrement happens once, at finalization
	product, err := uc.catalog.GetProduct(ctx, cmd.Seller, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("place bid: %w", err)
	}

	bid, err := auction.PlaceBid(cmd.Bidder, cmd.Amount, cmd.Quantity, product.Quantity, uc.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("place bid on auction %s: %w", key, err)
	}

	if err := uc.auctions.Save(ctx, auction); err != nil {
		log.Error("PlaceBid: failed to save auction",
			zap.String("auction", key.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("place bid: save auction %s: %w", key, err)
	}

	uc.events.Publish(ctx, domain.Event{
		Type:      domain.EventBidPlaced,
		Seller:    cmd.Seller,
		ProductID: cmd.ProductID,
		Actor:     &bid.Bidder,
		Amount:    bid.Amount,
		Quantity:  bid.Quantity,
		At:        bid.Timestamp,
	})
	return bid, nil
}
