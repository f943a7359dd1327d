package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bid is a single admitted offer inside an Auction aggregate. Amount is the
// total offered for Quantity units, in the currency smallest unit.
type Bid struct {
	Bidder    uuid.UUID
	Amount    int64
	Quantity  int64
	Timestamp time.Time
}

// NewBid creates a new Bid instance.
func NewBid(bidder uuid.UUID, amount, quantity int64, timestamp time.Time) *Bid {
	return &Bid{
		Bidder:    bidder,
		Amount:    amount,
		Quantity:  quantity,
		Timestamp: timestamp,
	}
}

// UnitPrice is the nominal per-unit price, integer division.
func (b *Bid) UnitPrice() int64 {
	if b.Quantity == 0 {
		return 0
	}
	return b.Amount / b.Quantity
}

// SettlementAmount is what the bidder actually pays: the nominal amount
// reduced by the bulk discount when the quantity reaches the threshold.
// Ranking never uses this value, only settlement does.
func (b *Bid) SettlementAmount(bulkThreshold, discountPct int64) int64 {
	if bulkThreshold > 0 && b.Quantity >= bulkThreshold {
		return b.Amount - b.Amount*discountPct/100
	}
	return b.Amount
}

// WinningBid is the settlement result returned by finalization.
type WinningBid struct {
	Bid
	SettlementTotal int64
}
