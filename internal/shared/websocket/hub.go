package websocket

import (
	"context"
	"time"

	"github.com/agromarket/auctionengine/internal/shared/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Hub keeps the client registry and handles message fan-out. Clients are
// grouped by the auction key they watch.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	// inbound client messages, consumed by module-specific handlers
	InboundMessages chan *ClientMessage
}

// Client is one websocket connection subscribed to a single auction.
type Client struct {
	Hub        *Hub
	Conn       *websocket.Conn
	Send       chan []byte
	AuctionKey string
	ID         string
}

type Message struct {
	AuctionKey string
	Data       []byte
}

// ClientMessage wraps an inbound frame with its origin client.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[string]map[*Client]bool),
		broadcast:       make(chan *Message, 64),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		InboundMessages: make(chan *ClientMessage, 64),
	}
}

// Run processes registration and broadcast traffic until the context ends.
func (h *Hub) Run(ctx context.Context) {
	log.Info("Websocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Websocket hub shutting down")
			return

		case client := <-h.register:
			if _, ok := h.clients[client.AuctionKey]; !ok {
				h.clients[client.AuctionKey] = make(map[*Client]bool)
			}
			h.clients[client.AuctionKey][client] = true
			log.Info("Client registered",
				zap.String("clientID", client.ID),
				zap.String("auction", client.AuctionKey),
			)

		case client := <-h.unregister:
			if clients, ok := h.clients[client.AuctionKey]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.AuctionKey)
					}
					log.Info("Client unregistered",
						zap.String("clientID", client.ID),
						zap.String("auction", client.AuctionKey),
					)
				}
			}

		case message := <-h.broadcast:
			for client := range h.clients[message.AuctionKey] {
				select {
				case client.Send <- message.Data:
				default:
					// slow or gone client, drop it
					close(client.Send)
					delete(h.clients[message.AuctionKey], client)
					log.Warn("Dropping unresponsive client",
						zap.String("clientID", client.ID),
						zap.String("auction", client.AuctionKey),
					)
				}
			}
		}
	}
}

// RegisterClient queues a client for registration.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		log.Error("Register channel full, closing client",
			zap.String("clientID", client.ID),
			zap.String("auction", client.AuctionKey),
		)
		_ = client.Conn.Close()
	}
}

// UnregisterClient queues a client for removal.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("Unregister channel full",
			zap.String("clientID", client.ID),
			zap.String("auction", client.AuctionKey),
		)
	}
}

// BroadcastToAuction sends data to every client watching the given auction.
func (h *Hub) BroadcastToAuction(auctionKey string, data []byte) {
	select {
	case h.broadcast <- &Message{AuctionKey: auctionKey, Data: data}:
	default:
		log.Error("Broadcast channel full, message dropped", zap.String("auction", auctionKey))
	}
}

// ReadPump reads frames from the peer and forwards them to the hub's
// inbound channel. One goroutine per client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("Websocket read error",
					zap.String("clientID", c.ID),
					zap.String("auction", c.AuctionKey),
					zap.Error(err),
				)
			}
			break
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("Inbound channel full, dropping message",
				zap.String("clientID", c.ID),
				zap.String("auction", c.AuctionKey),
			)
		}
	}
}

// WritePump pumps hub messages to the peer and keeps the connection alive
// with pings. The single writer for this connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("Websocket write error",
					zap.String("clientID", c.ID),
					zap.String("auction", c.AuctionKey),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
