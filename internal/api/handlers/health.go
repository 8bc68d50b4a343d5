package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const version = "1.0.0"

// ConnectionCounter reports how many windows are attached to a relay.
type ConnectionCounter interface {
	ClientCount() int
}

// HealthCheck returns relay health status
func HealthCheck(hub ConnectionCounter, fanout string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"service":     "particles-relay",
			"version":     version,
			"uptime":      time.Since(startTime).String(),
			"connections": hub.ClientCount(),
			"fanout":      fanout,
		})
	}
}

// WindowHealthCheck returns window process health status
func WindowHealthCheck(sync SyncStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "particles-window",
			"version":   version,
			"uptime":    time.Since(startTime).String(),
			"window_id": sync.WindowID(),
			"sync":      sync.State().String(),
		})
	}
}
