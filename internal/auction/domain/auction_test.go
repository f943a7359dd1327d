package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSeller = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testBidder = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testOther  = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func newTestAuction(createdAt time.Time) *Auction {
	return NewAuction(testSeller, uuid.New(), 100, createdAt.Add(time.Hour),
		10, 50, 20, false, createdAt)
}

func TestPlaceBidValidation(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	testcases := []struct {
		name     string
		bidder   uuid.UUID
		amount   int64
		quantity int64
		at       time.Time
		wantErr  error
	}{
		{
			name:     "below reserve unit price",
			bidder:   testBidder,
			amount:   500,
			quantity: 20, // 25 per unit < 100 reserve
			at:       start.Add(time.Minute),
			wantErr:  ErrBidTooLow,
		},
		{
			name:     "seller bidding on own auction",
			bidder:   testSeller,
			amount:   2000,
			quantity: 20,
			at:       start.Add(time.Minute),
			wantErr:  ErrInvalidBidder,
		},
		{
			name:     "zero quantity",
			bidder:   testBidder,
			amount:   2000,
			quantity: 0,
			at:       start.Add(time.Minute),
			wantErr:  ErrQuantityUnavailable,
		},
		{
			name:     "zero amount",
			bidder:   testBidder,
			amount:   0,
			quantity: 20,
			at:       start.Add(time.Minute),
			wantErr:  ErrBidTooLow,
		},
		{
			name:     "quantity below minimum",
			bidder:   testBidder,
			amount:   2000,
			quantity: 5,
			at:       start.Add(time.Minute),
			wantErr:  ErrQuantityUnavailable,
		},
		{
			name:     "quantity above availability",
			bidder:   testBidder,
			amount:   20000,
			quantity: 200,
			at:       start.Add(time.Minute),
			wantErr:  ErrQuantityUnavailable,
		},
		{
			name:     "bid after deadline",
			bidder:   testBidder,
			amount:   2000,
			quantity: 20,
			at:       start.Add(2 * time.Hour),
			wantErr:  ErrAuctionEnded,
		},
		{
			name:     "valid first bid at reserve",
			bidder:   testBidder,
			amount:   2000,
			quantity: 20, // exactly the 100 reserve per unit
			at:       start.Add(time.Minute),
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			auction := newTestAuction(start)
			bid, err := auction.PlaceBid(tc.bidder, tc.amount, tc.quantity, 100, tc.at)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, auction.Bids)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, bid)
			assert.Equal(t, bid, auction.HighestBid)
			assert.Len(t, auction.Bids, 1)
		})
	}
}

func TestLeaderMonotonicAndTies(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	auction := newTestAuction(start)

	first, err := auction.PlaceBid(testBidder, 2000, 20, 100, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first, auction.HighestBid)

	// equal total never displaces the earlier leader
	_, err = auction.PlaceBid(testOther, 2000, 20, 100, start.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrBidTooLow)
	assert.Equal(t, first, auction.HighestBid)

	// strictly higher total takes over
	second, err := auction.PlaceBid(testOther, 2500, 20, 100, start.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, second, auction.HighestBid)

	// the same bidder may outbid themselves; both stay in history
	third, err := auction.PlaceBid(testOther, 3000, 20, 100, start.Add(4*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, third, auction.HighestBid)
	assert.Len(t, auction.Bids, 3)

	// leader total equals the max over history at every point
	var maxAmount int64
	for _, b := range auction.Bids {
		if b.Amount > maxAmount {
			maxAmount = b.Amount
		}
	}
	assert.Equal(t, maxAmount, auction.HighestBid.Amount)
}

func TestExtend(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := start.Add(48 * time.Hour)

	auction := newTestAuction(start)
	end := auction.EndTime

	// backward and same-instant moves are rejected
	require.ErrorIs(t, auction.Extend(end.Add(-time.Minute), expiry, start), ErrInvalidAuctionEndTime)
	require.ErrorIs(t, auction.Extend(end, expiry, start), ErrInvalidAuctionEndTime)

	// past the product expiry is rejected
	require.ErrorIs(t, auction.Extend(expiry.Add(time.Hour), expiry, start), ErrInvalidAuctionEndTime)

	// forward within the window succeeds and keeps bids intact
	_, err := auction.PlaceBid(testBidder, 2000, 20, 100, start.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, auction.Extend(end.Add(time.Hour), expiry, start.Add(2*time.Minute)))
	assert.Equal(t, end.Add(time.Hour), auction.EndTime)
	assert.Len(t, auction.Bids, 1)

	// no extension once the deadline has passed
	require.ErrorIs(t, auction.Extend(end.Add(3*time.Hour), expiry, end.Add(2*time.Hour)), ErrAuctionEnded)
}

func TestSettle(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	auction := newTestAuction(start)

	_, err := auction.Settle(start.Add(30 * time.Minute))
	require.ErrorIs(t, err, ErrAuctionNotYetEnded)

	_, err = auction.Settle(start.Add(2 * time.Hour))
	require.ErrorIs(t, err, ErrNoBidsPlaced)

	_, err = auction.PlaceBid(testBidder, 2000, 20, 100, start.Add(time.Minute))
	require.NoError(t, err)
	_, err = auction.PlaceBid(testOther, 2500, 20, 100, start.Add(2*time.Minute))
	require.NoError(t, err)

	winner, err := auction.Settle(start.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, testOther, winner.Bidder)
	assert.Equal(t, int64(2500), winner.Amount)
	assert.Equal(t, int64(2500), winner.SettlementTotal) // 20 < bulk threshold 50
}

func TestBulkDiscountSettlementOnly(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	auction := newTestAuction(start) // threshold 50, discount 20%

	// a qualifying bulk bid ranks by its nominal total...
	_, err := auction.PlaceBid(testBidder, 6000, 60, 100, start.Add(time.Minute))
	require.NoError(t, err)

	// ...so a smaller discounted-equivalent total cannot displace it
	_, err = auction.PlaceBid(testOther, 5500, 50, 100, start.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrBidTooLow)

	winner, err := auction.Settle(start.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(6000), winner.Amount)
	assert.Equal(t, int64(4800), winner.SettlementTotal) // 6000 - 20%
}

func TestCurrentAsk(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	static := newTestAuction(start)
	assert.Equal(t, int64(200), static.CurrentAsk(200, start.Add(30*time.Minute)))

	dynamic := NewAuction(testSeller, uuid.New(), 100, start.Add(time.Hour),
		10, 0, 0, true, start)
	assert.Equal(t, int64(200), dynamic.CurrentAsk(200, start))
	assert.Equal(t, int64(150), dynamic.CurrentAsk(200, start.Add(30*time.Minute)))
	assert.Equal(t, int64(100), dynamic.CurrentAsk(200, start.Add(time.Hour)))

	// a leader with a higher unit price raises the ask
	_, err := dynamic.PlaceBid(testBidder, 3600, 20, 100, start.Add(30*time.Minute))
	require.NoError(t, err) // 180 per unit
	assert.Equal(t, int64(180), dynamic.CurrentAsk(200, start.Add(30*time.Minute)))

	// wide spans over day-long windows stay in range
	long := NewAuction(testSeller, uuid.New(), 1_000_000, start.Add(24*time.Hour),
		10, 0, 0, true, start)
	assert.Equal(t, int64(1_500_000), long.CurrentAsk(2_000_000, start.Add(12*time.Hour)))
}
