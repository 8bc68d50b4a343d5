package ws

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Frame kinds on the Redis channel. The first payload byte carries the
// websocket message type so binary frames survive the hop.
const (
	opText   byte = 0x01
	opBinary byte = 0x02
)

var errBadRedisFrame = errors.New("malformed relay payload")

// RedisFanout publishes frames to a Redis channel that every relay instance
// subscribes to, so windows connected to different instances still see each
// other. Redis holds nothing; pub/sub is fire-and-forget.
type RedisFanout struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
}

func NewRedisFanout(rdb *redis.Client, channel string, hub *Hub) *RedisFanout {
	return &RedisFanout{rdb: rdb, channel: channel, hub: hub}
}

// Publish sends the frame to every relay instance. If Redis cannot take it,
// windows on this instance still get it and the error is returned.
func (f *RedisFanout) Publish(ctx context.Context, kind int, data []byte) error {
	payload, err := packFrame(kind, data)
	if err != nil {
		return err
	}
	if err := f.rdb.Publish(ctx, f.channel, payload).Err(); err != nil {
		f.hub.Broadcast(kind, data)
		return fmt.Errorf("publish to %s, delivered locally only: %w", f.channel, err)
	}
	return nil
}

// Start subscribes to the relay channel and broadcasts every payload to the
// local hub until ctx is cancelled.
func (f *RedisFanout) Start(ctx context.Context) error {
	pubsub := f.rdb.Subscribe(ctx, f.channel)
	// Wait for the subscription to be confirmed before serving traffic.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", f.channel, err)
	}

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[REDIS] relay subscriber started on %s", f.channel)
		for {
			select {
			case <-ctx.Done():
				log.Println("[REDIS] relay subscriber stopping")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				kind, data, err := unpackFrame([]byte(msg.Payload))
				if err != nil {
					log.Printf("[REDIS] %v", err)
					continue
				}
				f.hub.Broadcast(kind, data)
			}
		}
	}()
	return nil
}

func packFrame(kind int, data []byte) ([]byte, error) {
	var op byte
	switch kind {
	case websocket.TextMessage:
		op = opText
	case websocket.BinaryMessage:
		op = opBinary
	default:
		return nil, fmt.Errorf("cannot relay websocket message type %d", kind)
	}
	out := make([]byte, 0, len(data)+1)
	out = append(out, op)
	return append(out, data...), nil
}

func unpackFrame(payload []byte) (int, []byte, error) {
	if len(payload) < 2 {
		return 0, nil, errBadRedisFrame
	}
	switch payload[0] {
	case opText:
		return websocket.TextMessage, payload[1:], nil
	case opBinary:
		return websocket.BinaryMessage, payload[1:], nil
	}
	return 0, nil, fmt.Errorf("%w: op %#x", errBadRedisFrame, payload[0])
}
