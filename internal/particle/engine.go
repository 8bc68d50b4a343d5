package particle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Stats counts what happened to the field during one tick.
type Stats struct {
	Seeking int `json:"seeking"`
	Idle    int `json:"idle"`
	Expired int `json:"expired"`
	Arrived int `json:"arrived"`
}

// Engine advances a Store one frame at a time toward a SharedTarget.
type Engine struct {
	store  *Store
	target *SharedTarget
}

func NewEngine(store *Store, target *SharedTarget) *Engine {
	return &Engine{store: store, target: target}
}

func (e *Engine) Store() *Store {
	return e.store
}

// Tick reads the shared target once and advances every particle. elapsed is
// the time since the simulation started, dt the frame length, both in seconds.
func (e *Engine) Tick(elapsed, dt float64) Stats {
	return Tick(e.store, e.target.Load(), elapsed, dt)
}

// Tick advances every particle in s by one frame. For each particle, in order:
// the lifespan counts down and an expired particle is fully reset; a seeking
// particle past its start delay steps toward its target and is soft reset on
// arrival; anything else breathes around its base position.
func Tick(s *Store, target mgl64.Vec3, elapsed, dt float64) Stats {
	var st Stats
	cfg := s.cfg

	for i := range s.particles {
		p := &s.particles[i]

		p.Lifespan -= dt
		if p.Lifespan <= 0 {
			s.expire(p, target)
			st.Expired++
			continue
		}

		if p.Mode == Seeking && elapsed >= p.StartDelay {
			st.Seeking++
			if s.seek(p, target, cfg) {
				st.Arrived++
			}
			continue
		}

		st.Idle++
		idle(p, elapsed)
	}

	return st
}

// expire is the full reset: home, new lifespan, new start delay, new target,
// new overshoot.
func (s *Store) expire(p *Particle, target mgl64.Vec3) {
	p.Position = p.Base
	p.Lifespan = s.rollLifespan()
	p.StartDelay = s.rollStartDelay()
	p.Target = target
	p.Overshoot = s.rollOvershoot()
}

// arrive is the soft reset. It keeps StartDelay.
func (s *Store) arrive(p *Particle, target mgl64.Vec3) {
	p.Position = p.Base
	p.Lifespan = s.rollLifespan()
	p.Target = target
	p.Overshoot = s.rollOvershoot()
}

// seek moves p toward its target and reports whether it arrived.
func (s *Store) seek(p *Particle, target mgl64.Vec3, cfg Config) bool {
	d := p.Target.Sub(p.Position)
	distance := d.Len()
	if distance == 0 {
		s.arrive(p, target)
		return true
	}

	speed := (math.Min(cfg.MaxSpeed, distance*SpeedGain) + cfg.MinSpeed) * p.Overshoot
	p.Position = p.Position.Add(d.Mul(speed / distance))

	if distance < ArrivalRadius {
		s.arrive(p, target)
		return true
	}
	return false
}

// idle sets p to its breathing position around Base at time t.
func idle(p *Particle, t float64) {
	phase := t * OscillationRate
	spring := 1 + BreathAmplitude*math.Sin(phase+p.Offset[0])

	p.Position = mgl64.Vec3{
		p.Base[0]*spring + math.Sin(phase+p.Offset[0])*JitterAmplitude,
		p.Base[1]*spring + math.Cos(phase+p.Offset[1])*JitterAmplitude,
		p.Base[2] + math.Sin(phase+p.Offset[2])*JitterAmplitude,
	}
}
