package particle

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeOnCircleWhenRadiiMatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 1
	cfg.InnerRadius = 15
	cfg.OuterRadius = 15
	cfg.FixedDepth = -75

	s, err := Initialize(cfg, NewRand(3))
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	base := s.Particle(0).Base
	assert.InDelta(t, 15.0, math.Hypot(base.X(), base.Y()), 1e-9)
	assert.Equal(t, -75.0, base.Z())
}

func TestInitializeDistributions(t *testing.T) {
	s := newTestStore(t, 5000, 11)
	cfg := s.Config()

	seeking := 0
	for i := 0; i < s.Len(); i++ {
		p := s.Particle(i)

		r := math.Hypot(p.Base.X(), p.Base.Y())
		assert.GreaterOrEqual(t, r, cfg.InnerRadius-1e-9)
		assert.LessOrEqual(t, r, cfg.OuterRadius+1e-9)
		assert.Equal(t, p.Base, p.Position)

		for _, o := range p.Offset {
			assert.True(t, o >= -1 && o <= 1, "offset %v out of range", o)
		}
		assert.True(t, p.Lifespan > 0 && p.Lifespan <= MaxLifespan, "lifespan %v", p.Lifespan)
		assert.True(t, p.StartDelay >= 0 && p.StartDelay < MaxStartDelay, "start delay %v", p.StartDelay)
		assert.True(t, p.Overshoot == 1 || (p.Overshoot >= cfg.OvershootMin && p.Overshoot < cfg.OvershootMax), "overshoot %v", p.Overshoot)
		assert.Contains(t, []colorful.Color{cfg.Palette[0], cfg.Palette[1]}, p.Color)

		if p.Mode == Seeking {
			seeking++
		}
	}

	// 0.35 of 5000 with generous slack
	assert.InDelta(t, 1750, seeking, 200)
}

func TestInitializeRejectsBadConfig(t *testing.T) {
	cases := map[string]func(*Config){
		"no particles":     func(c *Config) { c.Count = 0 },
		"inverted annulus": func(c *Config) { c.InnerRadius, c.OuterRadius = 20, 15 },
		"bad selection":    func(c *Config) { c.SelectionProbability = 1.5 },
		"bad overshoot":    func(c *Config) { c.OvershootMin = 0.5 },
		"zero min speed":   func(c *Config) { c.MinSpeed = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := Initialize(cfg, NewRand(1))
			assert.Error(t, err)
		})
	}
}

func TestPositionsLayout(t *testing.T) {
	s := newTestStore(t, 3, 8)
	s.Particle(1).Position = mgl64.Vec3{1.5, -2.5, -75}

	buf := s.Positions(nil)

	require.Len(t, buf, 9)
	assert.Equal(t, []float32{1.5, -2.5, -75}, buf[3:6])
}

func TestPositionsReusesBuffer(t *testing.T) {
	s := newTestStore(t, 100, 8)
	buf := make([]float32, 0, 300)

	out := s.Positions(buf)

	require.Len(t, out, 300)
	assert.Same(t, &buf[:1][0], &out[0])
}

func TestColorsAreIndexedLikeParticles(t *testing.T) {
	s := newTestStore(t, 50, 4)
	colors := s.Colors()

	require.Len(t, colors, 150)
	for i := 0; i < s.Len(); i++ {
		c := s.Particle(i).Color
		assert.Equal(t, []float32{float32(c.R), float32(c.G), float32(c.B)}, colors[i*3:i*3+3])
	}

	// callers get a copy
	colors[0] = 42
	assert.NotEqual(t, float32(42), s.Colors()[0])
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette("#1fb02a", "#ff723d")
	require.NoError(t, err)
	assert.InDelta(t, DefaultPrimary.G, p[0].G, 1e-9)
	assert.InDelta(t, DefaultSecondary.R, p[1].R, 1e-9)

	_, err = ParsePalette("green", "#ff723d")
	assert.Error(t, err)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "seeking", Seeking.String())
}
