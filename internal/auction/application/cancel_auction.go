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

// CancelAuctionDTO names the auction to remove.
type CancelAuctionDTO struct {
	Seller    uuid.UUID
	ProductID uuid.UUID
}

// CancelAuctionUseCase lets the seller delete an auction nobody has bid on,
// so stale empty auctions do not persist forever. Once a bid exists the only
// way out is finalization.
type CancelAuctionUseCase struct {
	auctions   domain.AuctionRepository
	authorizer auth.Authorizer
	clock      clock.Clock
	events     domain.EventPublisher
}

func NewCancelAuctionUseCase(auctions domain.AuctionRepository, clk clock.Clock,
	authorizer auth.Authorizer, events domain.EventPublisher) *CancelAuctionUseCase {
	return &CancelAuctionUseCase{
		auctions:   auctions,
		authorizer: authorizer,
		clock:      clk,
		events:     events,
	}
}

func (uc *CancelAuctionUseCase) Execute(ctx context.Context, cmd CancelAuctionDTO) error {
	if err := uc.authorizer.RequireAuth(ctx, cmd.Seller); err != nil {
		return err
	}

	key := domain.AuctionKey{Seller: cmd.Seller, ProductID: cmd.ProductID}
	auction, err := uc.auctions.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("cancel auction: %w", err)
	}
	if len(auction.Bids) > 0 {
		return fmt.Errorf("cancel auction %s: %w", key, domain.ErrAuctionHasBids)
	}

	if err := uc.auctions.Delete(ctx, key); err != nil {
		return fmt.Errorf("cancel auction: delete %s: %w", key, err)
	}

	log.Info("Auction cancelled", zap.String("auction", key.String()))
	uc.events.Publish(ctx, domain.Event{
		Type:      domain.EventAuctionCancelled,
		Seller:    cmd.Seller,
		ProductID: cmd.ProductID,
		At:        uc.clock.Now(),
	})
	return nil
}
