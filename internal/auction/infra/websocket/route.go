package websocket

import (
	"context"

	"github.com/agromarket/auctionengine/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RegisterRoutes mounts the live-auction socket. Clients connect to one
// auction key and stay subscribed until they disconnect.
func RegisterRoutes(ctx context.Context, app fiber.Router, hub *websocket.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/auctions/:seller/:product", fiberws.New(func(conn *fiberws.Conn) {
		key := conn.Params("seller") + "/" + conn.Params("product")
		client := &websocket.Client{
			Hub:        hub,
			Conn:       conn,
			Send:       make(chan []byte, 16),
			AuctionKey: key,
			ID:         uuid.NewString(),
		}
		hub.RegisterClient(client)

		go client.WritePump(ctx)
		client.ReadPump(ctx) // blocks until the peer goes away
	}))
}
