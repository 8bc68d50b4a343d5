package ws

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/particles/internal/protocol"
)

// HandleWebSocket upgrades a window connection and attaches it to the hub.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		id:   h.nextID.Add(1),
		send: make(chan frame, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump reads center_position frames and hands them to the hub's fanout.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] unexpected close for connection %d: %v", c.id, err)
			}
			return
		}
		// any inbound frame proves liveness
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if _, err := protocol.Decode(kind, message); err != nil {
			log.Printf("[WS] dropping frame from connection %d: %v", c.id, err)
			continue
		}

		// Forward the original bytes so every window sees exactly what was sent.
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err = c.hub.fanout.Publish(ctx, kind, message)
		cancel()
		if err != nil {
			log.Printf("[WS] fanout failed for connection %d: %v", c.id, err)
		}
	}
}
