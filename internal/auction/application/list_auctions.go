package application

import (
	"context"
	"fmt"
	"time"

	"github.com/agromarket/auctionengine/internal/auction/domain"
)

// ListAuctionsUseCase serves the browse queries used by the delivery layer.
type ListAuctionsUseCase struct {
	auctions domain.AuctionRepository
}

func NewListAuctionsUseCase(auctions domain.AuctionRepository) *ListAuctionsUseCase {
	return &ListAuctionsUseCase{auctions: auctions}
}

// Active returns every live auction.
func (uc *ListAuctionsUseCase) Active(ctx context.Context) ([]*domain.Auction, error) {
	auctions, err := uc.auctions.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active auctions: %w", err)
	}
	return auctions, nil
}

// EndingSoon returns live auctions whose deadline falls within threshold.
func (uc *ListAuctionsUseCase) EndingSoon(ctx context.Context, threshold time.Duration) ([]*domain.Auction, error) {
	auctions, err := uc.auctions.ListEndingSoon(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("list auctions ending soon: %w", err)
	}
	return auctions, nil
}
