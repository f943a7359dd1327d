package websocket

import (
	"context"
	"encoding/json"

	"github.com/agromarket/auctionengine/internal/auction/application"
	"github.com/agromarket/auctionengine/internal/shared/logger"
	"github.com/agromarket/auctionengine/internal/shared/websocket"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionWSHandler processes inbound frames for the auction module and
// pushes state updates to everyone watching the same auction.
type AuctionWSHandler struct {
	service application.AuctionService
	hub     *websocket.Hub
}

func NewAuctionWSHandler(service application.AuctionService, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		service: service,
		hub:     hub,
	}
}

// ListenForMessages consumes the hub's inbound channel until the context
// ends.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("AuctionWSHandler listening for inbound messages")
	for {
		select {
		case <-ctx.Done():
			log.Info("AuctionWSHandler stopped")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, "invalid message format")
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientBid:
		h.handleClientBid(ctx, client, data)
	default:
		h.sendErrorToClient(client, "unknown message type")
	}
}

func (h *AuctionWSHandler) handleClientBid(ctx context.Context, client *websocket.Client, data []byte) {
	var bidMsg ClientBidMessage
	if err := json.Unmarshal(data, &bidMsg); err != nil {
		h.sendErrorToClient(client, "invalid bid message format")
		return
	}

	cmd := application.PlaceBidDTO{
		Seller:    bidMsg.Payload.Seller,
		ProductID: bidMsg.Payload.ProductID,
		Bidder:    bidMsg.Payload.Bidder,
		Amount:    bidMsg.Payload.Amount,
		Quantity:  bidMsg.Payload.Quantity,
	}
	key := cmd.Seller.String() + "/" + cmd.ProductID.String()
	if key != client.AuctionKey {
		h.sendErrorToClient(client, "auction key mismatch")
		return
	}

	if _, err := h.service.PlaceBid(ctx, cmd); err != nil {
		h.sendErrorToClient(client, err.Error())
		return
	}

	state, err := h.service.GetAuctionState(ctx, cmd.Seller, cmd.ProductID)
	if err != nil {
		h.sendErrorToClient(client, "failed to get updated auction state")
		return
	}

	updateMsg := ServerAuctionUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerAuctionUpdate},
	}
	updateMsg.Payload.Seller = state.Seller
	updateMsg.Payload.ProductID = state.ProductID
	updateMsg.Payload.CurrentAsk = state.CurrentAsk
	updateMsg.Payload.EndTime = state.EndTime
	updateMsg.Payload.BidCount = state.BidCount
	updateMsg.Payload.LeaderAmount = state.LeaderAmount
	updateMsg.Payload.LeaderQuantity = state.LeaderQuantity
	updateMsg.Payload.LeaderBidder = state.LeaderBidder
	updateMsg.Payload.LastBidTime = state.LastBidTime

	frame, err := json.Marshal(updateMsg)
	if err != nil {
		h.sendErrorToClient(client, "failed to serialize auction update")
		return
	}
	h.hub.BroadcastToAuction(client.AuctionKey, frame)
}

func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, errorMessage string) {
	errMsg := ServerErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerError},
	}
	errMsg.Payload.Error = errorMessage
	data, err := json.Marshal(errMsg)
	if err != nil {
		log.Error("failed to marshal ServerErrorMessage", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full or closed, dropping error message")
	}
}
