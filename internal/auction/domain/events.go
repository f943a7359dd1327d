package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType tags a lifecycle transition for fan-out to off-chain observers.
type EventType string

const (
	EventAuctionCreated   EventType = "auction_created"
	EventBidPlaced        EventType = "bid_placed"
	EventAuctionExtended  EventType = "auction_extended"
	EventAuctionFinalized EventType = "auction_finalized"
	EventAuctionCancelled EventType = "auction_cancelled"
)

// Event is emitted on every state transition. Delivery is fire-and-forget;
// the engine never depends on an observer seeing it.
type Event struct {
	Type      EventType  `json:"type"`
	Seller    uuid.UUID  `json:"seller"`
	ProductID uuid.UUID  `json:"product_id"`
	Actor     *uuid.UUID `json:"actor,omitempty"`  // bidder or winner, when relevant
	Amount    int64      `json:"amount,omitempty"` // bid or settlement total
	Quantity  int64      `json:"quantity,omitempty"`
	At        time.Time  `json:"at"`
}

// EventPublisher fans events out to whoever is listening (websocket hub,
// message bus). Implementations must not block the calling use case.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event)
}

// NopPublisher drops every event. Default for tests and tools.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
