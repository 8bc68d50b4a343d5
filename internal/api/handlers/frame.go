package handlers

import (
	"encoding/binary"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/particles/internal/loop"
	"github.com/playmatatu/particles/internal/particle"
	"github.com/playmatatu/particles/internal/viewport"
	"github.com/playmatatu/particles/internal/windowsync"
)

// FrameSource is the published output of the frame loop.
type FrameSource interface {
	Snapshot(dst []float32) (loop.FrameInfo, []float32)
	Info() loop.FrameInfo
	Colors() []float32
}

// SyncStatus exposes the position sync client to handlers.
type SyncStatus interface {
	WindowID() string
	State() windowsync.State
}

// GetFramePositions streams the latest positions as little-endian float32, stride 3.
func GetFramePositions(frames FrameSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, positions := frames.Snapshot(nil)
		c.Header("X-Frame-Seq", strconv.FormatUint(info.Seq, 10))
		c.Data(http.StatusOK, "application/octet-stream", encodeFloats(positions))
	}
}

// GetFrameColors streams the particle colors as little-endian float32, stride 3.
func GetFrameColors(frames FrameSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "application/octet-stream", encodeFloats(frames.Colors()))
	}
}

// GetFrameStats returns the latest frame counters along with sync state.
func GetFrameStats(frames FrameSource, sync SyncStatus, target *particle.SharedTarget) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := frames.Info()
		t := target.Load()
		c.JSON(http.StatusOK, gin.H{
			"seq":       info.Seq,
			"elapsed":   info.Elapsed,
			"stats":     info.Stats,
			"window_id": sync.WindowID(),
			"sync":      sync.State().String(),
			"target":    []float64{t.X(), t.Y(), t.Z()},
		})
	}
}

// GetWindow returns the geometry the window process currently assumes.
func GetWindow(tracker *viewport.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, tracker.Window())
	}
}

// UpdateWindow lets the renderer report where its window sits on screen.
func UpdateWindow(tracker *viewport.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req viewport.Window
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window geometry"})
			return
		}
		if req.Width <= 0 || req.Height <= 0 || req.AvailWidth <= 0 || req.AvailHeight <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window and display sizes must be positive"})
			return
		}
		tracker.Set(req)
		c.JSON(http.StatusOK, req)
	}
}

func encodeFloats(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
