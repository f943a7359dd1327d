package websocket

import (
	"context"
	"encoding/json"

	"github.com/agromarket/auctionengine/internal/auction/domain"
	"github.com/agromarket/auctionengine/internal/shared/websocket"
	"go.uber.org/zap"
)

// HubPublisher fans domain events out to the hub group watching the
// auction. Fire-and-forget: a full hub channel drops the frame.
type HubPublisher struct {
	hub *websocket.Hub
}

func NewHubPublisher(hub *websocket.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, ev domain.Event) {
	frame, err := json.Marshal(struct {
		BaseMessage
		Payload domain.Event `json:"payload"`
	}{
		BaseMessage: BaseMessage{Type: MessageTypeServerEvent},
		Payload:     ev,
	})
	if err != nil {
		log.Error("failed to marshal event frame", zap.Error(err))
		return
	}
	key := ev.Seller.String() + "/" + ev.ProductID.String()
	p.hub.BroadcastToAuction(key, frame)
}
