package application

import (
	"context"
	"time"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/google/uuid"
)

// AuctionService is the application interface of the auction module,
// exposing the full lifecycle to the delivery layers.
type AuctionService interface {
	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (uuid.UUID, error)
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error)
	ExtendAuction(ctx context.Context, cmd ExtendAuctionDTO) error
	FinalizeAuction(ctx context.Context, cmd FinalizeAuctionDTO) (*domain.WinningBid, error)
	CancelAuction(ctx context.Context, cmd CancelAuctionDTO) error
	GetAuctionState(ctx context.Context, seller, productID uuid.UUID) (*AuctionStateDTO, error)
	ListActive(ctx context.Context) ([]*domain.Auction, error)
	ListEndingSoon(ctx context.Context, threshold time.Duration) ([]*domain.Auction, error)
}

type auctionService struct {
	createUC   *CreateAuctionUseCase
	placeBidUC *PlaceBidUseCase
	extendUC   *ExtendAuctionUseCase
	finalizeUC *FinalizeAuctionUseCase
	cancelUC   *CancelAuctionUseCase
	stateUC    *GetAuctionStateUseCase
	listUC     *ListAuctionsUseCase
}

// NewAuctionService wires every use case against the same collaborators.
func NewAuctionService(auctions domain.AuctionRepository, catalog domain.ProductCatalog,
	settler domain.SettlementWriter, clk clock.Clock, authorizer auth.Authorizer,
	events domain.EventPublisher) AuctionService {
	return &auctionService{
		createUC:   NewCreateAuctionUseCase(auctions, catalog, clk, authorizer, events),
		placeBidUC: NewPlaceBidUseCase(auctions, catalog, clk, authorizer, events),
		extendUC:   NewExtendAuctionUseCase(auctions, catalog, clk, authorizer, events),
		finalizeUC: NewFinalizeAuctionUseCase(auctions, catalog, settler, clk, authorizer, events),
		cancelUC:   NewCancelAuctionUseCase(auctions, clk, authorizer, events),
		stateUC:    NewGetAuctionStateUseCase(auctions, catalog, clk),
		listUC:     NewListAuctionsUseCase(auctions),
	}
}

func (s *auctionService) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (uuid.UUID, error) {
	return s.createUC.Execute(ctx, cmd)
}

func (s *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	return s.placeBidUC.Execute(ctx, cmd)
}

func (s *auctionService) ExtendAuction(ctx context.Context, cmd ExtendAuctionDTO) error {
	return s.extendUC.Execute(ctx, cmd)
}

func (s *auctionService) FinalizeAuction(ctx context.Context, cmd FinalizeAuctionDTO) (*domain.WinningBid, error) {
	return s.finalizeUC.Execute(ctx, cmd)
}

func (s *auctionService) CancelAuction(ctx context.Context, cmd CancelAuctionDTO) error {
	return s.cancelUC.Execute(ctx, cmd)
}

func (s *auctionService) GetAuctionState(ctx context.Context, seller, productID uuid.UUID) (*AuctionStateDTO, error) {
	return s.stateUC.Execute(ctx, seller, productID)
}

func (s *auctionService) ListActive(ctx context.Context) ([]*domain.Auction, error) {
	return s.listUC.Active(ctx)
}

func (s *auctionService) ListEndingSoon(ctx context.Context, threshold time.Duration) ([]*domain.Auction, error) {
	return s.listUC.EndingSoon(ctx, threshold)
}
