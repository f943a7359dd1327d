package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/agromarket/auctionengine/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// CreateAuctionDTO carries the seller's auction parameters.
type CreateAuctionDTO struct {
	Seller          uuid.UUID
	ProductID       uuid.UUID
	ReservePrice    int64
	EndTime         time.Time
	MinQuantity     int64
	BulkThreshold   int64
	BulkDiscountPct int64
	DynamicPricing  bool
}

// CreateAuctionUseCase opens an auction for a product the seller owns.
type CreateAuctionUseCase struct {
	auctions   domain.AuctionRepository
	catalog    domain.ProductCatalog
	clock      clock.Clock
	authorizer auth.Authorizer
	events     domain.EventPublisher
}

func NewCreateAuctionUseCase(auctions domain.AuctionRepository, catalog domain.ProductCatalog,
	clk clock.Clock, authorizer auth.Authorizer, events domain.EventPublisher) *CreateAuctionUseCase {
	return &CreateAuctionUseCase{
		auctions:   auctions,
		catalog:    catalog,
		clock:      clk,
		authorizer: authorizer,
		events:     events,
	}
}

// Execute validates the request in contract order and persists the new
// auction. Returns the product id, which doubles as the auction key for
// this seller.
func (uc *CreateAuctionUseCase) Execute(ctx context.Context, cmd CreateAuctionDTO) (uuid.UUID, error) {
	if err := uc.authorizer.RequireAuth(ctx, cmd.Seller); err != nil {
		return uuid.Nil, err
	}

	product, err := uc.catalog.GetProduct(ctx, cmd.Seller, cmd.ProductID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create auction: %w", err)
	}

	if _, err := uc.auctions.Get(ctx, domain.AuctionKey{Seller: cmd.Seller, ProductID: cmd.ProductID}); err == nil {
		log.Warn("Auction creation rejected: duplicate",
			zap.String("seller", cmd.Seller.String()),
			zap.String("productID", cmd.ProductID.String()),
		)
		return uuid.Nil, domain.ErrAuctionAlreadyExists
	} else if !errors.Is(err, domain.ErrAuctionNotFound) {
		return uuid.Nil, fmt.Errorf("create auction: %w", err)
	}

	now := uc.clock.Now()
	if product.Expired(now) {
		return uuid.Nil, domain.ErrProductExpired
	}
	if !cmd.EndTime.After(now) || cmd.EndTime.After(product.ExpiryDate) {
		return uuid.Nil, domain.ErrInvalidAuctionEndTime
	}
	if cmd.MinQuantity <= 0 || cmd.MinQuantity > product.Quantity {
		return uuid.Nil, domain.ErrQuantityUnavailable
	}

	auction := domain.NewAuction(cmd.Seller, cmd.ProductID, cmd.ReservePrice, cmd.EndTime,
		cmd.MinQuantity, cmd.BulkThreshold, cmd.BulkDiscountPct, cmd.DynamicPricing, now)
	if err := uc.auctions.Create(ctx, auction); err != nil {
		return uuid.Nil, fmt.Errorf("create auction: %w", err)
	}

	log.Info("Auction created",
		zap.String("seller", cmd.Seller.String()),
		zap.String("productID", cmd.ProductID.String()),
		zap.Int64("reservePrice", cmd.ReservePrice),
		zap.Time("endTime", cmd.EndTime),
	)
	uc.events.Publish(ctx, domain.Event{
		Type:      domain.EventAuctionCreated,
		Seller:    cmd.Seller,
		ProductID: cmd.ProductID,
		At:        now,
	})
	return cmd.ProductID, nil
}
