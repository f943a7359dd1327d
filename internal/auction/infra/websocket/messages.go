package websocket

import (
	"time"

	"github.com/google/uuid"
)

// MessageType tags a websocket frame.
type MessageType string

const (
	MessageTypeClientBid           MessageType = "client_bid"            // client submits a bid
	MessageTypeServerAuctionUpdate MessageType = "server_auction_update" // server pushes fresh auction state
	MessageTypeServerEvent         MessageType = "server_event"          // server relays a lifecycle event
	MessageTypeServerError         MessageType = "server_error"
)

// BaseMessage carries the type discriminator shared by all frames.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is a bid submitted over the socket.
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		Seller    uuid.UUID `json:"seller"`
		ProductID uuid.UUID `json:"product_id"`
		Bidder    uuid.UUID `json:"bidder"`
		Amount    int64     `json:"amount"`
		Quantity  int64     `json:"quantity"`
	} `json:"payload"`
}

// ServerAuctionUpdateMessage pushes the read model after an admitted bid.
type ServerAuctionUpdateMessage struct {
	BaseMessage
	Payload struct {
		Seller         uuid.UUID  `json:"seller"`
		ProductID      uuid.UUID  `json:"product_id"`
		CurrentAsk     int64      `json:"current_ask"`
		EndTime        time.Time  `json:"end_time"`
		BidCount       int        `json:"bid_count"`
		LeaderAmount   int64      `json:"leader_amount,omitempty"`
		LeaderQuantity int64      `json:"leader_quantity,omitempty"`
		LeaderBidder   *uuid.UUID `json:"leader_bidder,omitempty"`
		LastBidTime    *time.Time `json:"last_bid_time,omitempty"`
	} `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
	} `json:"payload"`
}
