package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/particles/internal/api"
	"github.com/playmatatu/particles/internal/config"
	"github.com/playmatatu/particles/internal/redis"
	"github.com/playmatatu/particles/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()

	// Fan out through Redis when several relay instances share traffic
	fanout := "local"
	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		rf := ws.NewRedisFanout(rdb, cfg.RelayChannel, hub)
		if err := rf.Start(ctx); err != nil {
			log.Fatalf("Failed to start Redis relay subscriber: %v", err)
		}
		hub.SetFanout(rf)
		fanout = "redis"
		log.Printf("[RELAY] fanning out over Redis channel %s", cfg.RelayChannel)
	} else {
		log.Printf("[RELAY] REDIS_URL not set - single instance fan-out")
	}

	go hub.Run(ctx)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRelayRoutes(router, hub, cfg, fanout)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting particle relay on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Println("[RELAY] stopped")
}
