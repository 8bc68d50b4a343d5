package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MapScreenPointToWorld converts a global screen point into the world point on
// the plane z = depth that appears under it in win.
//
// A maximized window has no meaningful screen offset, so the camera axis point
// (0, 0, depth) is returned instead.
func MapScreenPointToWorld(screenX, screenY, depth float64, win Window, cam Camera) mgl64.Vec3 {
	if win.Maximized() || win.Width <= 0 || win.Height <= 0 {
		return mgl64.Vec3{0, 0, depth}
	}

	// global screen -> window local
	x := screenX - win.ScreenX
	y := screenY - win.ScreenY

	// window local -> NDC, Y grows upward
	ndcX := (x/win.Width)*2 - 1
	ndcY := -(y/win.Height)*2 + 1

	return intersectDepth(cam, mgl64.Vec3{ndcX, ndcY, 1}, depth)
}

// intersectDepth casts a ray from the camera through an NDC point and returns
// where it crosses z = depth.
func intersectDepth(cam Camera, ndc mgl64.Vec3, depth float64) mgl64.Vec3 {
	far := cam.Unproject(ndc)
	dir := far.Sub(cam.Position)
	if dir.Len() == 0 {
		return mgl64.Vec3{0, 0, depth}
	}
	dir = dir.Normalize()
	if math.Abs(dir.Z()) < 1e-12 {
		return mgl64.Vec3{0, 0, depth}
	}
	dist := (depth - cam.Position.Z()) / dir.Z()
	return cam.Position.Add(dir.Mul(dist))
}

// ScreenCenterToWorld maps the window's own center onto the depth plane. It is
// the default attraction point before any other window has reported in.
func ScreenCenterToWorld(depth float64, win Window, cam Camera) mgl64.Vec3 {
	cx, cy := win.Center()
	return MapScreenPointToWorld(cx, cy, depth, win, cam)
}
