package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/playmatatu/particles/internal/particle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh() { r.calls.Add(1) }

func newLoop(t *testing.T, r Refresher) (*Loop, *particle.Store) {
	t.Helper()
	cfg := particle.DefaultConfig()
	cfg.Count = 200
	store, err := particle.Initialize(cfg, particle.NewRand(77))
	require.NoError(t, err)
	engine := particle.NewEngine(store, particle.NewSharedTarget(mgl64.Vec3{0, 0, cfg.FixedDepth}))
	return New(engine, r, 60), store
}

func TestStepPublishesFrame(t *testing.T) {
	r := &countingRefresher{}
	l, store := newLoop(t, r)

	info := l.Step(0.5, 1.0/60)
	_, positions := l.Snapshot(nil)

	assert.Equal(t, uint64(1), info.Seq)
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Equal(t, store.Positions(nil), positions)
	assert.Equal(t, store.Len(), info.Stats.Seeking+info.Stats.Idle+info.Stats.Expired)
}

func TestSnapshotIsACopy(t *testing.T) {
	l, _ := newLoop(t, nil)
	l.Step(0, 1.0/60)

	_, first := l.Snapshot(nil)
	saved := append([]float32(nil), first...)
	l.Step(1, 1.0/60)

	assert.Equal(t, saved, first)
	assert.Equal(t, uint64(2), l.Info().Seq)
}

func TestColorsMatchStore(t *testing.T) {
	l, store := newLoop(t, nil)
	assert.Equal(t, store.Colors(), l.Colors())
}

func TestRunStopsOnCancel(t *testing.T) {
	l, _ := newLoop(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return l.Info().Seq >= 3 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}
