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
	"github.com/playmatatu/particles/internal/loop"
	"github.com/playmatatu/particles/internal/particle"
	"github.com/playmatatu/particles/internal/protocol"
	"github.com/playmatatu/particles/internal/viewport"
	"github.com/playmatatu/particles/internal/windowsync"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	format, err := protocol.ParseFormat(cfg.WireFormat)
	if err != nil {
		log.Fatalf("Invalid WIRE_FORMAT: %v", err)
	}
	palette, err := particle.ParsePalette(cfg.PalettePrimary, cfg.PaletteSecondary)
	if err != nil {
		log.Fatalf("Invalid palette: %v", err)
	}

	pcfg := particle.Config{
		Count:                cfg.ParticleCount,
		InnerRadius:          cfg.InnerRadius,
		OuterRadius:          cfg.OuterRadius,
		FixedDepth:           cfg.FixedDepth,
		SelectionProbability: cfg.SelectionProbability,
		OvershootProbability: cfg.OvershootProbability,
		OvershootMin:         cfg.OvershootMin,
		OvershootMax:         cfg.OvershootMax,
		MinSpeed:             cfg.MinSpeed,
		MaxSpeed:             cfg.MaxSpeed,
		Palette:              palette,
	}
	store, err := particle.Initialize(pcfg, particle.NewRand(cfg.ParticleSeed))
	if err != nil {
		log.Fatalf("Failed to initialize particles: %v", err)
	}

	tracker := viewport.NewTracker(viewport.Window{
		ScreenX:     cfg.WindowX,
		ScreenY:     cfg.WindowY,
		Width:       cfg.WindowWidth,
		Height:      cfg.WindowHeight,
		AvailWidth:  cfg.DisplayWidth,
		AvailHeight: cfg.DisplayHeight,
	})
	camera := viewport.NewCamera(cfg.CameraZ, cfg.CameraFOV, cfg.WindowWidth/cfg.WindowHeight)

	// Until another window reports in, particles gather at our own center
	target := particle.NewSharedTarget(viewport.ScreenCenterToWorld(cfg.FixedDepth, tracker.Window(), camera))
	engine := particle.NewEngine(store, target)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := windowsync.NewClient(windowsync.Options{
		URL:             cfg.RelayURL,
		Interval:        cfg.BroadcastInterval,
		ReconnectDelays: cfg.ReconnectDelays,
		Format:          format,
		Depth:           cfg.FixedDepth,
		Camera:          camera,
	}, tracker, target)
	log.Printf("[SYNC] window id %s, relay %s (%s)", client.WindowID(), cfg.RelayURL, format)
	go client.Run(ctx)

	frames := loop.New(engine, client, cfg.FPS)
	go frames.Run(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupWindowRoutes(router, api.WindowDeps{
		Frames:  frames,
		Sync:    client,
		Target:  target,
		Tracker: tracker,
	}, cfg)

	srv := &http.Server{Addr: ":" + cfg.WindowPort, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting particle window on port %s", cfg.WindowPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}
