package application

import (
	"context"
	"fmt"
	"time"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/google/uuid"
)

// AuctionStateDTO is the read model exposed to UI/WS consumers.
type AuctionStateDTO struct {
	Seller          uuid.UUID  `json:"seller"`
	ProductID       uuid.UUID  `json:"product_id"`
	ReservePrice    int64      `json:"reserve_price"`
	EndTime         time.Time  `json:"end_time"`
	MinQuantity     int64      `json:"min_quantity"`
	BulkThreshold   int64      `json:"bulk_threshold"`
	BulkDiscountPct int64      `json:"bulk_discount_pct"`
	DynamicPricing  bool       `json:"dynamic_pricing"`
	CurrentAsk      int64      `json:"current_ask"`
	BidCount        int        `json:"bid_count"`
	LeaderAmount    int64      `json:"leader_amount,omitempty"`
	LeaderQuantity  int64      `json:"leader_quantity,omitempty"`
	LeaderBidder    *uuid.UUID `json:"leader_bidder,omitempty"`
	LastBidTime     *time.Time `json:"last_bid_time,omitempty"`
}

// GetAuctionStateUseCase retrieves the current state of one auction.
type GetAuctionStateUseCase struct {
	auctions domain.AuctionRepository
	catalog  domain.ProductCatalog
	clock    clock.Clock
}

func NewGetAuctionStateUseCase(auctions domain.AuctionRepository, catalog domain.ProductCatalog,
	clk clock.Clock) *GetAuctionStateUseCase {
	return &GetAuctionStateUseCase{
		auctions: auctions,
		catalog:  catalog,
		clock:    clk,
	}
}

func (uc *GetAuctionStateUseCase) Execute(ctx context.Context, seller, productID uuid.UUID) (*AuctionStateDTO, error) {
	key := domain.AuctionKey{Seller: seller, ProductID: productID}
	auction, err := uc.auctions.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get auction state: %w", err)
	}

	product, err := uc.catalog.GetProduct(ctx, seller, productID)
	if err != nil {
		return nil, fmt.Errorf("get auction state: %w", err)
	}

	dto := &AuctionStateDTO{
		Seller:          auction.Seller,
		ProductID:       auction.ProductID,
		ReservePrice:    auction.ReservePrice,
		EndTime:         auction.EndTime,
		MinQuantity:     auction.MinQuantity,
		BulkThreshold:   auction.BulkThreshold,
		BulkDiscountPct: auction.BulkDiscountPct,
		DynamicPricing:  auction.DynamicPricing,
		CurrentAsk:      auction.CurrentAsk(product.Price, uc.clock.Now()),
		BidCount:        len(auction.Bids),
	}
	if leader := auction.HighestBid; leader != nil {
		dto.LeaderAmount = leader.Amount
		dto.LeaderQuantity = leader.Quantity
		dto.LeaderBidder = &leader.Bidder
		dto.LastBidTime = &leader.Timestamp
	}
	return dto, nil
}
