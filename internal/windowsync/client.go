// Package windowsync keeps a window's shared target in step with the other
// windows connected to the relay.
package windowsync

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/particles/internal/particle"
	"github.com/playmatatu/particles/internal/protocol"
	"github.com/playmatatu/particles/internal/viewport"
)

// State is the connection state of a Client.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	}
	return "disconnected"
}

const (
	defaultInterval       = 100 * time.Millisecond
	defaultReconnectDelay = 2 * time.Second
	defaultReadTimeout    = 60 * time.Second // relay pings every 30s
	closeGrace            = time.Second
)

// Options configures a Client.
type Options struct {
	URL             string
	Interval        time.Duration
	ReconnectDelays []time.Duration
	Format          protocol.Format
	Depth           float64
	Camera          viewport.Camera
	Dialer          *websocket.Dialer

	// ReadTimeout bounds silence from the relay before the session is
	// considered dead. Pings and broadcasts both extend it.
	ReadTimeout time.Duration
}

// Client reports this window's center to the relay and turns other windows'
// reports into the shared target.
type Client struct {
	id     string
	opts   Options
	window viewport.WindowSource
	target *particle.SharedTarget

	state atomic.Int32

	handlerMu sync.Mutex
	detached  bool
	remote    *[2]float64 // last screen point from another window
}

// NewClient creates a client with a fresh window identity. It does not connect
// until Run is called.
func NewClient(opts Options, window viewport.WindowSource, target *particle.SharedTarget) *Client {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if len(opts.ReconnectDelays) == 0 {
		opts.ReconnectDelays = []time.Duration{defaultReconnectDelay}
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	return &Client{
		id:       uuid.NewString(),
		opts:     opts,
		window:   window,
		target:   target,
		detached: true,
	}
}

func (c *Client) WindowID() string {
	return c.id
}

func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	if prev := State(c.state.Swap(int32(s))); prev != s {
		log.Printf("[SYNC] window %s: %s -> %s", c.id, prev, s)
	}
}

// Run connects to the relay and keeps the session alive, reconnecting on
// failure, until ctx is cancelled. No messages are buffered across outages.
func (c *Client) Run(ctx context.Context) {
	defer c.setState(Disconnected)

	failures := 0
	for {
		if failures == 0 {
			c.setState(Connecting)
		} else {
			c.setState(Reconnecting)
			if !sleepCtx(ctx, c.reconnectDelay(failures-1)) {
				return
			}
		}

		conn, _, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[SYNC] connect to %s failed: %v", c.opts.URL, err)
			failures++
			continue
		}

		c.setState(Connected)
		failures = 0
		c.serve(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		failures = 1
	}
}

// reconnectDelay returns the wait before retry n, repeating the last entry.
func (c *Client) reconnectDelay(n int) time.Duration {
	delays := c.opts.ReconnectDelays
	if n < len(delays) {
		return delays[n]
	}
	return delays[len(delays)-1]
}

// serve runs one connected session: a periodic sender and an inbound reader.
// It returns once the connection drops or ctx is cancelled, after the sender
// has stopped and the handler is detached.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.attach()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.sendLoop(sessCtx, cancel, conn)
	}()

	readDone := make(chan error, 1)
	go func() {
		readDone <- c.readLoop(conn)
	}()

	readFinished := false
	select {
	case <-sessCtx.Done():
	case err := <-readDone:
		readFinished = true
		log.Printf("[SYNC] connection lost: %v", err)
	}

	// Teardown order: stop the timer, detach the handler, then close.
	cancel()
	wg.Wait()
	c.detach()

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeGrace))
	conn.Close()
	if !readFinished {
		<-readDone
	}
}

// sendLoop reports the window center every interval. A failed write ends the
// session: gorilla keeps the first write error and fails every later write.
func (c *Client) sendLoop(ctx context.Context, endSession context.CancelFunc, conn *websocket.Conn) {
	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			data, err := c.encodeCenter()
			if err != nil {
				log.Printf("[SYNC] error encoding position: %v", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(c.opts.Interval))
			if err := conn.WriteMessage(c.opts.Format.FrameKind(), data); err != nil {
				log.Printf("[SYNC] error sending position, dropping session: %v", err)
				endSession()
				return
			}
		}
	}
}

func (c *Client) encodeCenter() ([]byte, error) {
	x, y := c.window.Window().Center()
	return protocol.Encode(c.opts.Format, protocol.CenterPosition{WindowID: c.id, X: x, Y: y})
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	timeout := c.opts.ReadTimeout
	conn.SetReadDeadline(time.Now().Add(timeout))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(timeout))
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(closeGrace))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(timeout))

		msg, err := protocol.Decode(kind, data)
		if err != nil {
			log.Printf("[SYNC] ignoring frame: %v", err)
			continue
		}
		c.Handle(msg)
	}
}

func (c *Client) attach() {
	c.handlerMu.Lock()
	c.detached = false
	c.handlerMu.Unlock()
}

// detach returns once no handler is running; none will run until attach.
func (c *Client) detach() {
	c.handlerMu.Lock()
	c.detached = true
	c.handlerMu.Unlock()
}

// Handle applies a broadcast from the relay and reports whether it moved the
// shared target. The window's own echo and anything arriving while detached
// are ignored.
func (c *Client) Handle(msg protocol.CenterPosition) bool {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()

	if c.detached || msg.WindowID == c.id {
		return false
	}
	c.remote = &[2]float64{msg.X, msg.Y}
	c.target.Store(c.mapPoint(msg.X, msg.Y))
	return true
}

// Refresh remaps the last remote screen point against the current window
// geometry. The frame loop calls it once per frame so moving this window
// moves the target with it.
func (c *Client) Refresh() {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()

	if p := c.remote; p != nil {
		c.target.Store(c.mapPoint(p[0], p[1]))
	}
}

func (c *Client) mapPoint(x, y float64) mgl64.Vec3 {
	win := c.window.Window()
	cam := c.opts.Camera.WithAspect(win.Width, win.Height)
	return viewport.MapScreenPointToWorld(x, y, c.opts.Depth, win, cam)
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
