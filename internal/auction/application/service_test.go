package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/agromarket/auctionengine/internal/auction/infra/repository/memory"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seller  = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	bidder1 = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	bidder2 = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000003")
)

type fixture struct {
	service AuctionService
	repo    *memory.AuctionRepository
	catalog *memory.ProductCatalog
	clock   *clock.Fake
	product *domain.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	catalog := memory.NewProductCatalog()
	repo := memory.NewAuctionRepository(clk)
	settler := memory.NewSettlementWriter(repo, catalog)

	product := &domain.Product{
		Seller:     seller,
		ID:         uuid.New(),
		Type:       "coffee",
		Region:     "narino",
		Price:      150,
		Quantity:   100,
		ExpiryDate: clk.Now().Add(72 * time.Hour),
	}
	catalog.PutProduct(product)

	service := NewAuctionService(repo, catalog, settler, clk, auth.AllowAll{}, domain.NopPublisher{})
	return &fixture{service: service, repo: repo, catalog: catalog, clock: clk, product: product}
}

func (f *fixture) createAuction(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := f.service.CreateAuction(context.Background(), CreateAuctionDTO{
		Seller:       seller,
		ProductID:    f.product.ID,
		ReservePrice: 100,
		EndTime:      f.clock.Now().Add(time.Hour),
		MinQuantity:  10,
	})
	require.NoError(t, err)
	return id
}

func TestCreateAuctionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testcases := []struct {
		name    string
		mutate  func(dto *CreateAuctionDTO)
		wantErr error
	}{
		{
			name:    "unknown product",
			mutate:  func(dto *CreateAuctionDTO) { dto.ProductID = uuid.New() },
			wantErr: domain.ErrProductNotFound,
		},
		{
			name:    "end time in the past",
			mutate:  func(dto *CreateAuctionDTO) { dto.EndTime = f.clock.Now().Add(-time.Minute) },
			wantErr: domain.ErrInvalidAuctionEndTime,
		},
		{
			name:    "end time past product expiry",
			mutate:  func(dto *CreateAuctionDTO) { dto.EndTime = f.product.ExpiryDate.Add(time.Hour) },
			wantErr: domain.ErrInvalidAuctionEndTime,
		},
		{
			name:    "zero min quantity",
			mutate:  func(dto *CreateAuctionDTO) { dto.MinQuantity = 0 },
			wantErr: domain.ErrQuantityUnavailable,
		},
		{
			name:    "min quantity above stock",
			mutate:  func(dto *CreateAuctionDTO) { dto.MinQuantity = 1000 },
			wantErr: domain.ErrQuantityUnavailable,
		},
		{
			name:   "valid",
			mutate: func(dto *CreateAuctionDTO) {},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			dto := CreateAuctionDTO{
				Seller:       seller,
				ProductID:    f.product.ID,
				ReservePrice: 100,
				EndTime:      f.clock.Now().Add(time.Hour),
				MinQuantity:  10,
			}
			tc.mutate(&dto)
			id, err := f.service.CreateAuction(ctx, dto)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, f.product.ID, id)
		})
	}
}

func TestCreateAuctionUniqueness(t *testing.T) {
	f := newFixture(t)
	f.createAuction(t)

	_, err := f.service.CreateAuction(context.Background(), CreateAuctionDTO{
		Seller:       seller,
		ProductID:    f.product.ID,
		ReservePrice: 50,
		EndTime:      f.clock.Now().Add(time.Hour),
		MinQuantity:  10,
	})
	require.ErrorIs(t, err, domain.ErrAuctionAlreadyExists)
}

func TestCreateAuctionExpiredProduct(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(96 * time.Hour)

	_, err := f.service.CreateAuction(context.Background(), CreateAuctionDTO{
		Seller:       seller,
		ProductID:    f.product.ID,
		ReservePrice: 100,
		EndTime:      f.clock.Now().Add(time.Hour),
		MinQuantity:  10,
	})
	require.ErrorIs(t, err, domain.ErrProductExpired)
}

// Walks the full lifecycle of spec scenario: losing bid, two competing
// bidders, settlement, terminality.
func TestAuctionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAuction(t)

	// unit price 25 < reserve 100
	_, err := f.service.PlaceBid(ctx, PlaceBidDTO{
		Seller: seller, ProductID: f.product.ID, Bidder: bidder1, Amount: 500, Quantity: 20,
	})
	require.ErrorIs(t, err, domain.ErrBidTooLow)

	_, err = f.service.PlaceBid(ctx, PlaceBidDTO{
		Seller: seller, ProductID: f.product.ID, Bidder: bidder1, Amount: 2000, Quantity: 20,
	})
	require.NoError(t, err)

	_, err = f.service.PlaceBid(ctx, PlaceBidDTO{
		Seller: seller, ProductID: f.product.ID, Bidder: bidder2, Amount: 2500, Quantity: 20,
	})
	require.NoError(t, err)

	state, err := f.service.GetAuctionState(ctx, seller, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.BidCount)
	assert.Equal(t, int64(2500), state.LeaderAmount)
	require.NotNil(t, state.LeaderBidder)
	assert.Equal(t, bidder2, *state.LeaderBidder)

	// too early to finalize
	_, err = f.service.FinalizeAuction(ctx, FinalizeAuctionDTO{Seller: seller, ProductID: f.product.ID})
	require.ErrorIs(t, err, domain.ErrAuctionNotYetEnded)

	f.clock.Advance(2 * time.Hour)

	winner, err := f.service.FinalizeAuction(ctx, FinalizeAuctionDTO{Seller: seller, ProductID: f.product.ID})
	require.NoError(t, err)
	assert.Equal(t, bidder2, winner.Bidder)
	assert.Equal(t, int64(2500), winner.Amount)
	assert.Equal(t, int64(20), winner.Quantity)

	// settlement decremented the product quantity by exactly the winning bid
	product, err := f.catalog.GetProduct(ctx, seller, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), product.Quantity)

	// finalization is terminal: the record is gone
	_, err = f.service.GetAuctionState(ctx, seller, f.product.ID)
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
	_, err = f.service.FinalizeAuction(ctx, FinalizeAuctionDTO{Seller: seller, ProductID: f.product.ID})
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestPlaceBidZeroQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAuction(t)

	// zero quantity is a quantity failure, not a price failure
	_, err := f.service.PlaceBid(ctx, PlaceBidDTO{
		Seller: seller, ProductID: f.product.ID, Bidder: bidder1, Amount: 2000, Quantity: 0,
	})
	require.ErrorIs(t, err, domain.ErrQuantityUnavailable)

	// a missing auction is reported before any value validation
	_, err = f.service.PlaceBid(ctx, PlaceBidDTO{
		Seller: seller, ProductID: uuid.New(), Bidder: bidder1, Amount: 2000, Quantity: 0,
	})
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

// failingSettler rejects a number of settlement attempts before delegating.
type failingSettler struct {
	inner    domain.SettlementWriter
	failures int
}

func (s *failingSettler) CompleteSettlement(ctx context.Context, key domain.AuctionKey, remaining int64) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("storage unavailable")
	}
	return s.inner.CompleteSettlement(ctx, key, remaining)
}

// A settlement write that fails must leave the stock and the auction
// untouched, and the retried finalize must decrement exactly once.
func TestFinalizeRetryAfterSettlementFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settler := &failingSettler{inner: memory.NewSettlementWriter(f.repo, f.catalog), failures: 1}
	service := NewAuctionService(f.repo, f.catalog, settler, f.clock, auth.AllowAll{}, domain.NopPublisher{})

	f.createAuction(t)
	_, err := service.PlaceBid(ctx, PlaceBidDTO{
		Seller: seller, ProductID: f.product.ID, Bidder: bidder1, Amount: 2000, Quantity: 20,
	})
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)

	_, err = service.FinalizeAuction(ctx, FinalizeAuctionDTO{Seller: seller, ProductID: f.product.ID})
	require.Error(t, err)

	// nothing committed: stock intact, auction still live
	product, err := f.catalog.GetProduct(ctx, seller, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), product.Quantity)
	_, err = service.GetAuctionState(ctx, seller, f.product.ID)
	require.NoError(t, err)

	// the retry settles once
	winner, err := service.FinalizeAuction(ctx, FinalizeAuctionDTO{Seller: seller, ProductID: f.product.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(20), winner.Quantity)
	product, err = f.catalog.GetProduct(ctx, seller, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), product.Quantity)
	_, err = service.GetAuctionState(ctx, seller, f.product.ID)
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestPlaceBidAfterDeadlineRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAuction(t)

	f.clock.Advance(2 * time.Hour)

	_, err := f.service.PlaceBid(ctx, PlaceBidDTO{
		Seller: seller, ProductID: f.product.ID, Bidder: bidder1, Amount: 2000, Quantity: 20,
	})
	require.ErrorIs(t, err, domain.ErrAuctionEnded)
}

func TestFinalizeWithoutBids(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAuction(t)
	f.clock.Advance(2 * time.Hour)

	_, err := f.service.FinalizeAuction(ctx, FinalizeAuctionDTO{Seller: seller, ProductID: f.product.ID})
	require.ErrorIs(t, err, domain.ErrNoBidsPlaced)

	// the record is untouched and still queryable
	_, err = f.service.GetAuctionState(ctx, seller, f.product.ID)
	require.NoError(t, err)
}

func TestExtendAuction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAuction(t)

	end := f.clock.Now().Add(time.Hour)

	err := f.service.ExtendAuction(ctx, ExtendAuctionDTO{
		Seller: seller, ProductID: f.product.ID, NewEndTime: end.Add(-time.Minute),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAuctionEndTime)

	err = f.service.ExtendAuction(ctx, ExtendAuctionDTO{
		Seller: seller, ProductID: f.product.ID, NewEndTime: end.Add(time.Hour),
	})
	require.NoError(t, err)

	state, err := f.service.GetAuctionState(ctx, seller, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, end.Add(time.Hour), state.EndTime)

	err = f.service.ExtendAuction(ctx, ExtendAuctionDTO{
		Seller: seller, ProductID: uuid.New(), NewEndTime: end.Add(3 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestCancelAuction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAuction(t)

	// once a bid exists the auction can only end through finalization
	_, err := f.service.PlaceBid(ctx, PlaceBidDTO{
		Seller: seller, ProductID: f.product.ID, Bidder: bidder1, Amount: 2000, Quantity: 20,
	})
	require.NoError(t, err)
	err = f.service.CancelAuction(ctx, CancelAuctionDTO{Seller: seller, ProductID: f.product.ID})
	require.ErrorIs(t, err, domain.ErrAuctionHasBids)

	// a bid-free auction can be cancelled and the record disappears
	f2 := newFixture(t)
	f2.createAuction(t)
	err = f2.service.CancelAuction(ctx, CancelAuctionDTO{Seller: seller, ProductID: f2.product.ID})
	require.NoError(t, err)
	_, err = f2.service.GetAuctionState(ctx, seller, f2.product.ID)
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestAuthorizationGate(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	catalog := memory.NewProductCatalog()
	repo := memory.NewAuctionRepository(clk)
	product := &domain.Product{
		Seller:     seller,
		ID:         uuid.New(),
		Type:       "cacao",
		Region:     "tumaco",
		Price:      150,
		Quantity:   100,
		ExpiryDate: clk.Now().Add(72 * time.Hour),
	}
	catalog.PutProduct(product)
	settler := memory.NewSettlementWriter(repo, catalog)
	service := NewAuctionService(repo, catalog, settler, clk, auth.ContextAuthorizer{}, domain.NopPublisher{})

	dto := CreateAuctionDTO{
		Seller:       seller,
		ProductID:    product.ID,
		ReservePrice: 100,
		EndTime:      clk.Now().Add(time.Hour),
		MinQuantity:  10,
	}

	// no principal in context
	_, err := service.CreateAuction(context.Background(), dto)
	require.ErrorIs(t, err, auth.ErrUnauthorized)

	// wrong principal
	_, err = service.CreateAuction(auth.WithPrincipal(context.Background(), bidder1), dto)
	require.ErrorIs(t, err, auth.ErrUnauthorized)

	// authenticated seller passes
	_, err = service.CreateAuction(auth.WithPrincipal(context.Background(), seller), dto)
	require.NoError(t, err)
}

func TestListAuctions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAuction(t)

	active, err := f.service.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	soon, err := f.service.ListEndingSoon(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, soon)

	soon, err = f.service.ListEndingSoon(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Len(t, soon, 1)
}
