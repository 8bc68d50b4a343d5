package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/particles/internal/api/handlers"
	"github.com/playmatatu/particles/internal/config"
	"github.com/playmatatu/particles/internal/middleware"
	"github.com/playmatatu/particles/internal/particle"
	"github.com/playmatatu/particles/internal/viewport"
	"github.com/playmatatu/particles/internal/ws"
)

// SetupRelayRoutes configures the broadcast relay's routes
func SetupRelayRoutes(router *gin.Engine, hub *ws.Hub, cfg *config.Config, fanout string) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(noCache)
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	wsCheck := middleware.WebSocketCORSCheck(cfg)

	// Path used by existing browser windows
	router.GET("/windowHub", wsCheck, handlers.HandleWindowWebSocket(hub))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(hub, fanout))
		v1.GET("/windows/ws", wsCheck, handlers.HandleWindowWebSocket(hub))
	}
}

// WindowDeps groups what the window process exposes over HTTP.
type WindowDeps struct {
	Frames  handlers.FrameSource
	Sync    handlers.SyncStatus
	Target  *particle.SharedTarget
	Tracker *viewport.Tracker
}

// SetupWindowRoutes configures the window process's frame export routes
func SetupWindowRoutes(router *gin.Engine, deps WindowDeps, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.WindowHealthCheck(deps.Sync))

		frame := v1.Group("/frame")
		{
			frame.GET("/positions", handlers.GetFramePositions(deps.Frames))
			frame.GET("/colors", handlers.GetFrameColors(deps.Frames))
			frame.GET("/stats", handlers.GetFrameStats(deps.Frames, deps.Sync, deps.Target))
		}

		v1.GET("/window", handlers.GetWindow(deps.Tracker))
		v1.PUT("/window", handlers.UpdateWindow(deps.Tracker))
	}
}

func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}
