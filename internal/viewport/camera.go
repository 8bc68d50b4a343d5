// Package viewport maps between screen pixels, the window rectangle and the
// world space the particle field lives in.
package viewport

import "github.com/go-gl/mathgl/mgl64"

const (
	defaultNear = 0.1
	defaultFar  = 1000.0
)

// Camera is a perspective camera. It is a plain value so readers on other
// goroutines can take a copy without locking.
type Camera struct {
	Position mgl64.Vec3
	LookAt   mgl64.Vec3
	Up       mgl64.Vec3
	FovY     float64 // degrees
	Aspect   float64
	Near     float64
	Far      float64
}

// NewCamera returns a camera at (0,0,z) looking down -Z.
func NewCamera(z, fovDegrees, aspect float64) Camera {
	return Camera{
		Position: mgl64.Vec3{0, 0, z},
		LookAt:   mgl64.Vec3{0, 0, z - 1},
		Up:       mgl64.Vec3{0, 1, 0},
		FovY:     fovDegrees,
		Aspect:   aspect,
		Near:     defaultNear,
		Far:      defaultFar,
	}
}

// WithAspect returns a copy of the camera fitted to a window of the given size.
func (c Camera) WithAspect(width, height float64) Camera {
	if width > 0 && height > 0 {
		c.Aspect = width / height
	}
	return c
}

func (c Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.LookAt, c.Up)
}

func (c Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// Unproject takes a point in normalized device coordinates back into world space.
func (c Camera) Unproject(ndc mgl64.Vec3) mgl64.Vec3 {
	inv := c.Projection().Mul4(c.View()).Inv()
	p := inv.Mul4x1(ndc.Vec4(1))
	if p.W() == 0 {
		return p.Vec3()
	}
	return p.Vec3().Mul(1 / p.W())
}

// Project takes a world space point into normalized device coordinates.
func (c Camera) Project(world mgl64.Vec3) mgl64.Vec3 {
	p := c.Projection().Mul4(c.View()).Mul4x1(world.Vec4(1))
	if p.W() == 0 {
		return p.Vec3()
	}
	return p.Vec3().Mul(1 / p.W())
}
