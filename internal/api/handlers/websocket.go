package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/particles/internal/ws"
)

// HandleWindowWebSocket attaches a window connection to the relay hub
func HandleWindowWebSocket(hub *ws.Hub) gin.HandlerFunc {
	return hub.HandleWebSocket
}
