// Package loop drives the simulation at a fixed frame rate and publishes each
// frame's position buffer for the renderer.
package loop

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/particles/internal/particle"
)

const statsEvery = 5 * time.Second

// Refresher is called once per frame before the tick, e.g. to remap the
// shared target after the window moved.
type Refresher interface {
	Refresh()
}

// FrameInfo describes the latest published frame.
type FrameInfo struct {
	Seq     uint64         `json:"seq"`
	Elapsed float64        `json:"elapsed"`
	Stats   particle.Stats `json:"stats"`
}

// Loop owns the engine. Only Run (or Step) touches the particle store; readers
// get copies of the published frame.
type Loop struct {
	engine    *particle.Engine
	refresher Refresher
	fps       int
	colors    []float32

	spare []float32 // next frame is exported here, then swapped in

	mu        sync.RWMutex
	info      FrameInfo
	positions []float32
}

func New(engine *particle.Engine, refresher Refresher, fps int) *Loop {
	if fps <= 0 {
		fps = 60
	}
	store := engine.Store()
	return &Loop{
		engine:    engine,
		refresher: refresher,
		fps:       fps,
		colors:    store.Colors(),
		spare:     make([]float32, store.Len()*3),
		positions: store.Positions(nil),
	}
}

// Step runs one frame: refresh, tick, publish.
func (l *Loop) Step(elapsed, dt float64) FrameInfo {
	if l.refresher != nil {
		l.refresher.Refresh()
	}
	stats := l.engine.Tick(elapsed, dt)
	l.spare = l.engine.Store().Positions(l.spare)

	l.mu.Lock()
	l.positions, l.spare = l.spare, l.positions
	l.info = FrameInfo{Seq: l.info.Seq + 1, Elapsed: elapsed, Stats: stats}
	info := l.info
	l.mu.Unlock()

	return info
}

// Run ticks at the configured rate until ctx is cancelled. dt is fixed at one
// frame; elapsed is wall time since Run started.
func (l *Loop) Run(ctx context.Context) {
	interval := time.Second / time.Duration(l.fps)
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	lastLog := start
	frames := 0
	log.Printf("[LOOP] simulating %d particles at %d fps", l.engine.Store().Len(), l.fps)

	for {
		select {
		case <-ctx.Done():
			log.Println("[LOOP] stopped")
			return
		case now := <-ticker.C:
			info := l.Step(now.Sub(start).Seconds(), dt)
			frames++

			if since := now.Sub(lastLog); since >= statsEvery {
				log.Printf("[LOOP] fps=%.1f seeking=%d idle=%d expired=%d arrived=%d",
					float64(frames)/since.Seconds(), info.Stats.Seeking, info.Stats.Idle, info.Stats.Expired, info.Stats.Arrived)
				frames = 0
				lastLog = now
			}
		}
	}
}

// Snapshot copies the latest positions into dst and returns it with the frame info.
func (l *Loop) Snapshot(dst []float32) (FrameInfo, []float32) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	dst = append(dst[:0], l.positions...)
	return l.info, dst
}

// Info returns the latest frame info.
func (l *Loop) Info() FrameInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.info
}

// Colors returns the immutable color buffer, stride 3.
func (l *Loop) Colors() []float32 {
	return l.colors
}
