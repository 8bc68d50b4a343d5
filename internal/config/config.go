package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Relay server
	Port         string
	FrontendURL  string
	RedisURL     string
	RelayChannel string

	// Window client
	WindowPort        string
	RelayURL          string
	WireFormat        string
	BroadcastInterval time.Duration
	ReconnectDelays   []time.Duration
	FPS               int

	// Particle field
	ParticleCount        int
	InnerRadius          float64
	OuterRadius          float64
	FixedDepth           float64
	SelectionProbability float64
	OvershootProbability float64
	OvershootMin         float64
	OvershootMax         float64
	MinSpeed             float64
	MaxSpeed             float64
	ParticleSeed         uint64
	PalettePrimary       string
	PaletteSecondary     string

	// Camera
	CameraZ   float64
	CameraFOV float64

	// Headless window geometry (screen pixels)
	WindowX       float64
	WindowY       float64
	WindowWidth   float64
	WindowHeight  float64
	DisplayWidth  float64
	DisplayHeight float64
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Relay server
		Port:         getEnv("APP_PORT", "8080"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		RedisURL:     getEnv("REDIS_URL", ""),
		RelayChannel: getEnv("RELAY_CHANNEL", "window_positions"),

		// Window client
		WindowPort:        getEnv("WINDOW_PORT", "8081"),
		RelayURL:          getEnv("RELAY_URL", "ws://localhost:8080/windowHub"),
		WireFormat:        getEnv("WIRE_FORMAT", "json"),
		BroadcastInterval: getEnvDuration("BROADCAST_INTERVAL_MS", 100*time.Millisecond),
		ReconnectDelays:   getEnvDurations("RECONNECT_DELAY_MS", []time.Duration{0, 2 * time.Second, 10 * time.Second, 30 * time.Second}),
		FPS:               getEnvInt("FPS", 60),

		// Particle field
		ParticleCount:        getEnvInt("PARTICLE_COUNT", 15000),
		InnerRadius:          getEnvFloat("INNER_RADIUS", 15),
		OuterRadius:          getEnvFloat("OUTER_RADIUS", 20),
		FixedDepth:           getEnvFloat("FIXED_DEPTH", -75),
		SelectionProbability: getEnvFloat("SELECTION_PROBABILITY", 0.35),
		OvershootProbability: getEnvFloat("OVERSHOOT_PROBABILITY", 0.35),
		OvershootMin:         getEnvFloat("OVERSHOOT_MIN", 1.2),
		OvershootMax:         getEnvFloat("OVERSHOOT_MAX", 1.5),
		MinSpeed:             getEnvFloat("MIN_SPEED", 0.1),
		MaxSpeed:             getEnvFloat("MAX_SPEED", 2.0),
		ParticleSeed:         getEnvUint64("PARTICLE_SEED", 0),
		PalettePrimary:       getEnv("PALETTE_PRIMARY", "#1fb02a"),
		PaletteSecondary:     getEnv("PALETTE_SECONDARY", "#ff723d"),

		// Camera
		CameraZ:   getEnvFloat("CAMERA_Z", 10),
		CameraFOV: getEnvFloat("CAMERA_FOV", 50),

		// Headless window geometry
		WindowX:       getEnvFloat("WINDOW_X", 0),
		WindowY:       getEnvFloat("WINDOW_Y", 0),
		WindowWidth:   getEnvFloat("WINDOW_WIDTH", 1280),
		WindowHeight:  getEnvFloat("WINDOW_HEIGHT", 720),
		DisplayWidth:  getEnvFloat("DISPLAY_WIDTH", 1920),
		DisplayHeight: getEnvFloat("DISPLAY_HEIGHT", 1080),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvUint64 rejects negative and out of range values with a warning.
func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		n, err := strconv.ParseUint(value, 10, 64)
		if err == nil {
			return n
		}
		log.Printf("[CONFIG] invalid %s=%q, using %d: %v", key, value, defaultValue, err)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration reads a millisecond count.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// getEnvDurations reads a comma separated list of millisecond counts, e.g. "0,2000,10000".
func getEnvDurations(key string, defaultValue []time.Duration) []time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []time.Duration
	for _, part := range strings.Split(value, ",") {
		ms, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || ms < 0 {
			return defaultValue
		}
		out = append(out, time.Duration(ms)*time.Millisecond)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
