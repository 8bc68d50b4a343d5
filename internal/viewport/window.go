package viewport

import "sync/atomic"

// Window is the on-screen rectangle of a client window in global screen pixels,
// together with the display area available to it.
type Window struct {
	ScreenX     float64 `json:"screen_x"`
	ScreenY     float64 `json:"screen_y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	AvailWidth  float64 `json:"avail_width"`
	AvailHeight float64 `json:"avail_height"`
}

// Center returns the window center in global screen pixels.
func (w Window) Center() (float64, float64) {
	return w.ScreenX + w.Width/2, w.ScreenY + w.Height/2
}

// Maximized reports whether the window fills the whole available display area.
func (w Window) Maximized() bool {
	return w.Width == w.AvailWidth && w.Height == w.AvailHeight
}

// WindowSource supplies the current window geometry.
type WindowSource interface {
	Window() Window
}

// Tracker holds the latest known window geometry. Safe for concurrent use.
type Tracker struct {
	current atomic.Pointer[Window]
}

func NewTracker(w Window) *Tracker {
	t := &Tracker{}
	t.Set(w)
	return t
}

func (t *Tracker) Window() Window {
	return *t.current.Load()
}

func (t *Tracker) Set(w Window) {
	t.current.Store(&w)
}
