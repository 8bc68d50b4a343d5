package handlers

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/playmatatu/particles/internal/loop"
	"github.com/playmatatu/particles/internal/particle"
	"github.com/playmatatu/particles/internal/viewport"
	"github.com/playmatatu/particles/internal/windowsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFrames struct {
	info      loop.FrameInfo
	positions []float32
	colors    []float32
}

func (f *fakeFrames) Snapshot(dst []float32) (loop.FrameInfo, []float32) {
	return f.info, append(dst[:0], f.positions...)
}
func (f *fakeFrames) Info() loop.FrameInfo { return f.info }
func (f *fakeFrames) Colors() []float32 { return f.colors }

type fakeSync struct{}

func (fakeSync) WindowID() string { return "window-1" }
func (fakeSync) State() windowsync.State { return windowsync.Connected }
func (fakeSync) ClientCount() int { return 3 }

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeFloats(t *testing.T, b []byte) []float32 {
	t.Helper()
	require.Zero(t, len(b)%4)
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func TestGetFramePositions(t *testing.T) {
	frames := &fakeFrames{info: loop.FrameInfo{Seq: 9}, positions: []float32{1, -2.5, -75, 3, 4, -75}}
	r := gin.New()
	r.GET("/p", GetFramePositions(frames))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9", w.Header().Get("X-Frame-Seq"))
	assert.Equal(t, frames.positions, decodeFloats(t, w.Body.Bytes()))
}

func TestGetFrameColors(t *testing.T) {
	frames := &fakeFrames{colors: []float32{0.1, 0.7, 0.2}}
	r := gin.New()
	r.GET("/c", GetFrameColors(frames))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/c", nil))

	assert.Equal(t, frames.colors, decodeFloats(t, w.Body.Bytes()))
}

func TestGetFrameStats(t *testing.T) {
	frames := &fakeFrames{info: loop.FrameInfo{Seq: 2, Stats: particle.Stats{Seeking: 5}}}
	target := particle.NewSharedTarget(mgl64.Vec3{1, 2, -75})
	r := gin.New()
	r.GET("/s", GetFrameStats(frames, fakeSync{}, target))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s", nil))

	var body struct {
		Seq    uint64         `json:"seq"`
		Sync   string         `json:"sync"`
		Stats  particle.Stats `json:"stats"`
		Target []float64      `json:"target"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint64(2), body.Seq)
	assert.Equal(t, "connected", body.Sync)
	assert.Equal(t, 5, body.Stats.Seeking)
	assert.Equal(t, []float64{1, 2, -75}, body.Target)
}

func TestUpdateWindow(t *testing.T) {
	tracker := viewport.NewTracker(viewport.Window{Width: 1, Height: 1, AvailWidth: 1, AvailHeight: 1})
	r := gin.New()
	r.PUT("/window", UpdateWindow(tracker))

	body := `{"screen_x":40,"screen_y":60,"width":800,"height":600,"avail_width":1920,"avail_height":1080}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/window", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, viewport.Window{ScreenX: 40, ScreenY: 60, Width: 800, Height: 600, AvailWidth: 1920, AvailHeight: 1080}, tracker.Window())
}

func TestUpdateWindowRejectsEmptySize(t *testing.T) {
	before := viewport.Window{Width: 10, Height: 10, AvailWidth: 10, AvailHeight: 10}
	tracker := viewport.NewTracker(before)
	r := gin.New()
	r.PUT("/window", UpdateWindow(tracker))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/window", strings.NewReader(`{"width":0}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, before, tracker.Window())
}

func TestHealthCheck(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(fakeSync{}, "local"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["connections"])
	assert.Equal(t, "local", body["fanout"])
}
