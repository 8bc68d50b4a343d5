package particle

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Mode selects a particle's behavior. It is rolled once at creation.
type Mode uint8

const (
	Idle Mode = iota
	Seeking
)

func (m Mode) String() string {
	if m == Seeking {
		return "seeking"
	}
	return "idle"
}

// Particle is one record in the store. Base, Offset, Mode and Color never
// change after Initialize.
type Particle struct {
	Base       mgl64.Vec3
	Position   mgl64.Vec3
	Offset     mgl64.Vec3 // per-axis phase offsets in [-1,1]
	Target     mgl64.Vec3
	Lifespan   float64
	StartDelay float64
	Overshoot  float64
	Mode       Mode
	Color      colorful.Color
}

// Store is a fixed arena of particles addressed by a stable index.
type Store struct {
	cfg       Config
	rng       *rand.Rand
	particles []Particle
	colors    []float32
}

// NewRand returns the deterministic source used by a Store. A zero seed is
// replaced by a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Initialize allocates cfg.Count particles placed uniformly by radius and angle
// in the annulus [InnerRadius, OuterRadius] on the plane z = FixedDepth.
func Initialize(cfg Config, rng *rand.Rand) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		cfg:       cfg,
		rng:       rng,
		particles: make([]Particle, cfg.Count),
		colors:    make([]float32, cfg.Count*3),
	}

	for i := range s.particles {
		p := &s.particles[i]

		radius := cfg.InnerRadius + rng.Float64()*(cfg.OuterRadius-cfg.InnerRadius)
		angle := rng.Float64() * 2 * math.Pi
		p.Base = mgl64.Vec3{radius * math.Cos(angle), radius * math.Sin(angle), cfg.FixedDepth}
		p.Position = p.Base
		p.Target = p.Base

		p.Offset = mgl64.Vec3{
			rng.Float64()*2 - 1,
			rng.Float64()*2 - 1,
			rng.Float64()*2 - 1,
		}

		if rng.Float64() < 0.5 {
			p.Color = cfg.Palette[0]
		} else {
			p.Color = cfg.Palette[1]
		}
		s.colors[i*3] = float32(p.Color.R)
		s.colors[i*3+1] = float32(p.Color.G)
		s.colors[i*3+2] = float32(p.Color.B)

		if rng.Float64() < cfg.SelectionProbability {
			p.Mode = Seeking
		}

		p.StartDelay = s.rollStartDelay()
		p.Lifespan = s.rollLifespan()
		p.Overshoot = s.rollOvershoot()
	}

	return s, nil
}

func (s *Store) Len() int {
	return len(s.particles)
}

func (s *Store) Config() Config {
	return s.cfg
}

// Particle returns the record at index i.
func (s *Store) Particle(i int) *Particle {
	return &s.particles[i]
}

// Positions writes current positions into dst as [x0,y0,z0,x1,...] and returns
// it, growing dst only when it is too small.
func (s *Store) Positions(dst []float32) []float32 {
	n := len(s.particles) * 3
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range s.particles {
		pos := s.particles[i].Position
		dst[i*3] = float32(pos[0])
		dst[i*3+1] = float32(pos[1])
		dst[i*3+2] = float32(pos[2])
	}
	return dst
}

// Colors returns a copy of the per-particle colors, stride 3.
func (s *Store) Colors() []float32 {
	return slices.Clone(s.colors)
}

// rollLifespan draws from (0, MaxLifespan] so a reset particle is always alive.
func (s *Store) rollLifespan() float64 {
	return MaxLifespan * (1 - s.rng.Float64())
}

func (s *Store) rollStartDelay() float64 {
	return s.rng.Float64() * MaxStartDelay
}

func (s *Store) rollOvershoot() float64 {
	if s.rng.Float64() < s.cfg.OvershootProbability {
		return s.cfg.OvershootMin + s.rng.Float64()*(s.cfg.OvershootMax-s.cfg.OvershootMin)
	}
	return 1.0
}
