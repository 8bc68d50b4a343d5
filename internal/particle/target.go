package particle

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// SharedTarget is the world point seeking particles converge on. One writer
// (the position sync client) replaces it whole; the engine reads it once per tick.
type SharedTarget struct {
	point atomic.Pointer[mgl64.Vec3]
}

func NewSharedTarget(initial mgl64.Vec3) *SharedTarget {
	t := &SharedTarget{}
	t.Store(initial)
	return t
}

func (t *SharedTarget) Load() mgl64.Vec3 {
	return *t.point.Load()
}

func (t *SharedTarget) Store(p mgl64.Vec3) {
	t.point.Store(&p)
}
