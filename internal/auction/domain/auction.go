package domain

import (
	"fmt"
	"sync"
	"time"

	"github.com/agromarket/auctionengine/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionKey identifies an auction: at most one live auction exists per
// (seller, product) pair.
type AuctionKey struct {
	Seller    uuid.UUID
	ProductID uuid.UUID
}

func (k AuctionKey) String() string {
	return fmt.Sprintf("%s/%s", k.Seller, k.ProductID)
}

// Auction is the aggregate owning the full lifecycle of one sale: creation,
// bid admission, extension and finalization. An auction that exists in
// storage is live; finalization and cancellation remove it.
type Auction struct {
	Seller          uuid.UUID
	ProductID       uuid.UUID
	ReservePrice    int64 // minimum acceptable unit price
	EndTime         time.Time
	MinQuantity     int64
	BulkThreshold   int64
	BulkDiscountPct int64
	DynamicPricing  bool
	HighestBid      *Bid
	Bids            []*Bid // append-only, admission order
	CreatedAt       time.Time

	// guards bid admission against concurrent delivery paths (HTTP + WS)
	mu sync.Mutex
}

// NewAuction builds a live auction with an empty bid history. Validation
// against the product record happens in the create use case.
func NewAuction(seller, productID uuid.UUID, reservePrice int64, endTime time.Time,
	minQuantity, bulkThreshold, bulkDiscountPct int64, dynamicPricing bool, createdAt time.Time) *Auction {
	return &Auction{
		Seller:          seller,
		ProductID:       productID,
		ReservePrice:    reservePrice,
		EndTime:         endTime,
		MinQuantity:     minQuantity,
		BulkThreshold:   bulkThreshold,
		BulkDiscountPct: bulkDiscountPct,
		DynamicPricing:  dynamicPricing,
		Bids:            []*Bid{},
		CreatedAt:       createdAt,
	}
}

// Key returns the storage key of this auction.
func (a *Auction) Key() AuctionKey {
	return AuctionKey{Seller: a.Seller, ProductID: a.ProductID}
}

// PlaceBid validates and admits a bid. available is the product quantity
// snapshot at call time. The checks run in contract order so the first
// failing one names the rejection.
func (a *Auction) PlaceBid(bidder uuid.UUID, amount, quantity int64, available int64, now time.Time) (*Bid, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !now.Before(a.EndTime) {
		log.Warn("Bid rejected: auction ended",
			zap.String("auction", a.Key().String()),
			zap.String("bidder", bidder.String()),
			zap.Time("endTime", a.EndTime),
		)
		return nil, ErrAuctionEnded
	}

	if bidder == a.Seller {
		log.Warn("Bid rejected: bidder is the seller",
			zap.String("auction", a.Key().String()),
			zap.String("bidder", bidder.String()),
		)
		return nil, ErrInvalidBidder
	}

	if quantity <= 0 || quantity < a.MinQuantity || quantity > available {
		log.Warn("Bid rejected: quantity unavailable",
			zap.String("auction", a.Key().String()),
			zap.Int64("quantity", quantity),
			zap.Int64("minQuantity", a.MinQuantity),
			zap.Int64("available", available),
		)
		return nil, ErrQuantityUnavailable
	}

	// reserve check uses the nominal unit price; the bulk discount only
	// changes what the winner pays at settlement
	bid := NewBid(bidder, amount, quantity, now)
	if amount <= 0 || bid.UnitPrice() < a.ReservePrice {
		log.Warn("Bid rejected: below reserve price",
			zap.String("auction", a.Key().String()),
			zap.Int64("unitPrice", bid.UnitPrice()),
			zap.Int64("reservePrice", a.ReservePrice),
		)
		return nil, ErrBidTooLow
	}

	// strict greater-than: an equal total never displaces the leader
	if a.HighestBid != nil && amount <= a.HighestBid.Amount {
		log.Warn("Bid rejected: does not beat current leader",
			zap.String("auction", a.Key().String()),
			zap.Int64("amount", amount),
			zap.Int64("leaderAmount", a.HighestBid.Amount),
		)
		return nil, ErrBidTooLow
	}

	a.Bids = append(a.Bids, bid)
	a.HighestBid = bid

	log.Info("Bid placed",
		zap.String("auction", a.Key().String()),
		zap.String("bidder", bidder.String()),
		zap.Int64("amount", amount),
		zap.Int64("quantity", quantity),
	)
	return bid, nil
}

// Extend moves the deadline forward. It is legal only while the auction is
// still live, only towards a strictly later instant, and never past the
// product expiry.
func (a *Auction) Extend(newEndTime, productExpiry, now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !now.Before(a.EndTime) {
		return ErrAuctionEnded
	}
	if !newEndTime.After(a.EndTime) || newEndTime.After(productExpiry) {
		return ErrInvalidAuctionEndTime
	}

	log.Info("Auction extended",
		zap.String("auction", a.Key().String()),
		zap.Time("oldEndTime", a.EndTime),
		zap.Time("newEndTime", newEndTime),
	)
	a.EndTime = newEndTime
	return nil
}

// Settle selects the winner once the deadline has passed. The winner is the
// leading bid; ties were already broken at admission time since an equal
// total never replaces the leader.
func (a *Auction) Settle(now time.Time) (*WinningBid, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if now.Before(a.EndTime) {
		return nil, ErrAuctionNotYetEnded
	}
	if len(a.Bids) == 0 {
		return nil, ErrNoBidsPlaced
	}

	winner := a.HighestBid
	return &WinningBid{
		Bid:             *winner,
		SettlementTotal: winner.SettlementAmount(a.BulkThreshold, a.BulkDiscountPct),
	}, nil
}

// CurrentAsk is the advisory unit price for off-chain price discovery.
// With dynamic pricing on, the ask decays linearly from the listed unit
// price to the reserve over the auction lifetime; a leader with a higher
// unit price raises it. Never consulted for bid admission.
func (a *Auction) CurrentAsk(listedPrice int64, now time.Time) int64 {
	ask := listedPrice
	if a.DynamicPricing && listedPrice > a.ReservePrice {
		total := a.EndTime.Sub(a.CreatedAt)
		elapsed := now.Sub(a.CreatedAt)
		switch {
		case elapsed >= total:
			ask = a.ReservePrice
		case elapsed > 0:
			span := listedPrice - a.ReservePrice
			// second resolution: span times elapsed nanoseconds
			// overflows int64 on long auctions with wide spans
			num, den := int64(elapsed/time.Second), int64(total/time.Second)
			if den == 0 {
				num, den = int64(elapsed), int64(total)
			}
			ask = listedPrice - span*num/den
		}
	}
	if ask < a.ReservePrice {
		ask = a.ReservePrice
	}
	if a.HighestBid != nil && a.HighestBid.UnitPrice() > ask {
		ask = a.HighestBid.UnitPrice()
	}
	return ask
}
