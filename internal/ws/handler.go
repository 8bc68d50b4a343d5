package ws

import (
	"context"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
	publishTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// frame is one websocket message queued for a client.
type frame struct {
	kind int
	data []byte
}

// Client represents a connected window
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   uint64
	send chan frame
}

// Fanout delivers a validated frame to every connected window, possibly
// across several relay instances.
type Fanout interface {
	Publish(ctx context.Context, kind int, data []byte) error
}

// Hub maintains the set of active clients. It keeps no message history.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	fanout     Fanout
	done       chan struct{}
	nextID     atomic.Uint64
	mu         sync.RWMutex
}

// NewHub creates a new Hub that fans out locally until SetFanout is called.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	h.fanout = localFanout{h}
	return h
}

// SetFanout replaces the delivery path. Call before Run.
func (h *Hub) SetFanout(f Fanout) {
	h.fanout = f
}

// Run processes registrations until ctx is cancelled, then drops every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] window connection %d registered (connections=%d)", client.id, n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("[WS] window connection %d unregistered (connections=%d)", client.id, len(h.clients))
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Println("[WS] hub stopped")
			return
		}
	}
}

// Broadcast queues a frame for every connected client, the sender included,
// and returns how many accepted it. A full or closing client is skipped.
func (h *Hub) Broadcast(kind int, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients {
		select {
		case client.send <- frame{kind: kind, data: data}:
			delivered++
		default:
			// Client's buffer is full
			log.Printf("[WS] send buffer full for connection %d, dropping frame", client.id)
		}
	}
	return delivered
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// localFanout delivers straight to this instance's clients.
type localFanout struct {
	hub *Hub
}

func (f localFanout) Publish(_ context.Context, kind int, data []byte) error {
	f.hub.Broadcast(kind, data)
	return nil
}

// writePump writes queued frames to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, hub dropped us. Best-effort close frame.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(msg.kind, msg.data); err != nil {
				log.Printf("[WS] write error for connection %d: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for connection %d: %v", c.id, err)
				return
			}
		}
	}
}
