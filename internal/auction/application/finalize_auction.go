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

// FinalizeAuctionDTO names the auction to settle.
type FinalizeAuctionDTO struct {
	Seller    uuid.UUID
	ProductID uuid.UUID
}

// FinalizeAuctionUseCase settles an ended auction: selects the winner,
// writes back the remaining product quantity and removes the record.
// Finalization is the only terminal transition besides cancel.
type FinalizeAuctionUseCase struct {
	auctions   domain.AuctionRepository
	catalog    domain.ProductCatalog
	settler    domain.SettlementWriter
	clock      clock.Clock
	authorizer auth.Authorizer
	events     domain.EventPublisher
}

func NewFinalizeAuctionUseCase(auctions domain.AuctionRepository, catalog domain.ProductCatalog,
	settler domain.SettlementWriter, clk clock.Clock, authorizer auth.Authorizer,
	events domain.EventPublisher) *FinalizeAuctionUseCase {
	return &FinalizeAuctionUseCase{
		auctions:   auctions,
		catalog:    catalog,
		settler:    settler,
		clock:      clk,
		authorizer: authorizer,
		events:     events,
	}
}

func (uc *FinalizeAuctionUseCase) Execute(ctx context.Context, cmd FinalizeAuctionDTO) (*domain.WinningBid, error) {
	if err := uc.authorizer.RequireAuth(ctx, cmd.Seller); err != nil {
		return nil, err
	}

	key := domain.AuctionKey{Seller: cmd.Seller, ProductID: cmd.ProductID}
	auction, err := uc.auctions.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("finalize auction: %w", err)
	}

	now := uc.clock.Now()
	winner, err := auction.Settle(now)
	if err != nil {
		return nil, fmt.Errorf("finalize auction %s: %w", key, err)
	}

	product, err := uc.catalog.GetProduct(ctx, cmd.Seller, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("finalize auction: %w", err)
	}

	remaining := product.Quantity - winner.Quantity
	if remaining < 0 {
		// bounds were checked at bid time against the then-current
		// snapshot; clamp rather than oversell if the catalog moved
		remaining = 0
		log.Warn("Finalize: winning quantity exceeds remaining stock, clamping",
			zap.String("auction", key.String()),
			zap.Int64("winningQuantity", winner.Quantity),
			zap.Int64("productQuantity", product.Quantity),
		)
	}
	// quantity decrement and auction removal commit together; a failure
	// here leaves both untouched so the call can be retried
	if err := uc.settler.CompleteSettlement(ctx, key, remaining); err != nil {
		return nil, fmt.Errorf("finalize auction: settle %s: %w", key, err)
	}

	log.Info("Auction finalized",
		zap.String("auction", key.String()),
		zap.String("winner", winner.Bidder.String()),
		zap.Int64("amount", winner.Amount),
		zap.Int64("settlementTotal", winner.SettlementTotal),
		zap.Int64("quantity", winner.Quantity),
	)
	uc.events.Publish(ctx, domain.Event{
		Type:      domain.EventAuctionFinalized,
		Seller:    cmd.Seller,
		ProductID: cmd.ProductID,
		Actor:     &winner.Bidder,
		Amount:    winner.SettlementTotal,
		Quantity:  winner.Quantity,
		At:        now,
	})
	return winner, nil
}
