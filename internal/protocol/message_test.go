package protocol

import (
	"math"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFrameShape(t *testing.T) {
	data, err := Encode(JSON, CenterPosition{WindowID: "w-1", X: 640, Y: 360.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"center_position","data":{"windowId":"w-1","x":640,"y":360.5}}`, string(data))
}

func TestDecodeBothFormats(t *testing.T) {
	msg := CenterPosition{WindowID: "abc", X: -12.25, Y: 1080}
	for _, f := range []Format{JSON, MsgPack} {
		data, err := Encode(f, msg)
		require.NoError(t, err)

		got, err := Decode(f.FrameKind(), data)
		require.NoError(t, err, f.String())
		assert.Equal(t, msg, got)
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct {
		name string
		kind int
		data string
		want error
	}{
		{"unknown type", websocket.TextMessage, `{"type":"chat","data":{"windowId":"a"}}`, ErrUnknownType},
		{"missing id", websocket.TextMessage, `{"type":"center_position","data":{"x":1,"y":2}}`, ErrMissingWindowID},
		{"ping frame", websocket.PingMessage, `{}`, ErrUnsupportedKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.kind, []byte(tc.data))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := Decode(websocket.TextMessage, []byte("not json"))
	assert.Error(t, err)
}

func TestValidateRejectsNonFinite(t *testing.T) {
	err := CenterPosition{WindowID: "a", X: math.Inf(1)}.Validate()
	assert.ErrorIs(t, err, ErrBadCoordinate)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MsgPack")
	require.NoError(t, err)
	assert.Equal(t, MsgPack, f)
	assert.Equal(t, websocket.BinaryMessage, f.FrameKind())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
