package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/particles/internal/config"
	"github.com/stretchr/testify/assert"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WebSocketCORSCheck(cfg))
	r.GET("/ws", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func upgradeRequest(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestWebSocketCORSCheck(t *testing.T) {
	prod := &config.Config{Environment: "production", FrontendURL: "https://particles.example"}
	dev := &config.Config{Environment: "development"}

	cases := []struct {
		name   string
		cfg    *config.Config
		origin string
		want   int
	}{
		{"native client", prod, "", http.StatusNoContent},
		{"frontend origin", prod, "https://particles.example", http.StatusNoContent},
		{"foreign origin", prod, "https://evil.example", http.StatusForbidden},
		{"dev localhost", dev, "http://localhost:3000", http.StatusNoContent},
		{"dev foreign", dev, "https://evil.example", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tc.cfg).ServeHTTP(w, upgradeRequest(tc.origin))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestPlainRequestsSkipOriginCheck(t *testing.T) {
	cfg := &config.Config{Environment: "production"}
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://evil.example")

	w := httptest.NewRecorder()
	newRouter(cfg).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAllowedOriginsIncludesFrontend(t *testing.T) {
	cfg := &config.Config{Environment: "development", FrontendURL: "http://localhost:5173"}
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, allowedOrigins(cfg))
}
