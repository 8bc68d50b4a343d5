// Package protocol defines the one message windows exchange through the relay.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const TypeCenterPosition = "center_position"

var (
	ErrUnknownType     = errors.New("unknown message type")
	ErrMissingWindowID = errors.New("window id required")
	ErrBadCoordinate   = errors.New("coordinate must be finite")
	ErrUnsupportedKind = errors.New("unsupported frame kind")
)

// CenterPosition reports the screen-space center of a window.
type CenterPosition struct {
	WindowID string  `json:"windowId" msgpack:"windowId"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
}

func (m CenterPosition) Validate() error {
	if m.WindowID == "" {
		return ErrMissingWindowID
	}
	if math.IsNaN(m.X) || math.IsInf(m.X, 0) || math.IsNaN(m.Y) || math.IsInf(m.Y, 0) {
		return ErrBadCoordinate
	}
	return nil
}

// Envelope mirrors the {"type": ..., "data": ...} frame used on every socket.
type Envelope struct {
	Type string         `json:"type" msgpack:"type"`
	Data CenterPosition `json:"data" msgpack:"data"`
}

// Format selects the encoding of outgoing frames. JSON travels in text frames,
// msgpack in binary frames.
type Format int

const (
	JSON Format = iota
	MsgPack
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return MsgPack, nil
	}
	return JSON, fmt.Errorf("unknown wire format %q", s)
}

func (f Format) String() string {
	if f == MsgPack {
		return "msgpack"
	}
	return "json"
}

// FrameKind is the websocket message type frames of this format travel in.
func (f Format) FrameKind() int {
	if f == MsgPack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Encode wraps msg in an envelope and serializes it.
func Encode(f Format, msg CenterPosition) ([]byte, error) {
	env := Envelope{Type: TypeCenterPosition, Data: msg}
	if f == MsgPack {
		return msgpack.Marshal(&env)
	}
	return json.Marshal(env)
}

// Decode parses a frame received with the given websocket message type and
// validates it.
func Decode(kind int, data []byte) (CenterPosition, error) {
	var env Envelope
	var err error
	switch kind {
	case websocket.TextMessage:
		err = json.Unmarshal(data, &env)
	case websocket.BinaryMessage:
		err = msgpack.Unmarshal(data, &env)
	default:
		return CenterPosition{}, ErrUnsupportedKind
	}
	if err != nil {
		return CenterPosition{}, fmt.Errorf("decode frame: %w", err)
	}
	if env.Type != TypeCenterPosition {
		return CenterPosition{}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if err := env.Data.Validate(); err != nil {
		return CenterPosition{}, err
	}
	return env.Data, nil
}
