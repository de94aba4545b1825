// Package conduit is the public API: Conduit supervises the receiver
// fan-out and the event builder as one cancellable task group and hands
// finished events to the caller one at a time.
package conduit

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gwm17/attpc-conduit/internal/builder"
	"github.com/gwm17/attpc-conduit/internal/cerrors"
	"github.com/gwm17/attpc-conduit/internal/config"
	"github.com/gwm17/attpc-conduit/internal/event"
	"github.com/gwm17/attpc-conduit/internal/graw"
	"github.com/gwm17/attpc-conduit/internal/logging"
	"github.com/gwm17/attpc-conduit/internal/padmap"
	"github.com/gwm17/attpc-conduit/internal/receiver"
)

// Conduit is the top-level handle an embedding program holds. It is safe
// for concurrent use: Connect/Disconnect/PollEvents/IsConnected all take
// an internal lock, since the state machine only tolerates one transition
// in flight at a time.
type Conduit struct {
	cfg  *config.Config
	pads *padmap.PadMap

	mu        sync.Mutex
	connected bool
	cancel    context.CancelFunc
	group     *errgroup.Group
	events    chan *event.Event
	runErr    chan error
}

// New constructs a disconnected Conduit using cfg and pads, both of which
// the caller loads once up front.
func New(cfg *config.Config, pads *padmap.PadMap) *Conduit {
	return &Conduit{cfg: cfg, pads: pads}
}

// IsConnected reports whether the task group is currently running.
func (c *Conduit) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect starts the receiver fan-out and event builder with the given
// in-flight frame budget. Calling Connect while already connected is a
// no-op: it logs a warning and returns nil.
func (c *Conduit) Connect(maxCacheSize int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		logging.Warnf("conduit: Connect called while already connected, ignoring")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	// A plain errgroup.Group (not WithContext) is deliberate: a receiver
	// returning a non-nil error must not cancel its siblings (spec §4.2 —
	// "the pipeline continues with the remaining receivers"). Only the
	// builder's fatal errors warrant tearing down the whole group, which
	// is done explicitly below rather than via errgroup's implicit
	// cancel-on-first-error behavior.
	g := &errgroup.Group{}

	frames := make(chan graw.Frame, c.cfg.FrameQueueCapacity)
	events := make(chan *event.Event, c.cfg.EventQueueCapacity)
	runErr := make(chan error, 1)

	receiver.SpawnAll(ctx, g, c.cfg, frames)

	b := builder.New(c.pads, frames, events, maxCacheSize)
	g.Go(func() error {
		err := b.Run(ctx)
		if err != nil {
			// The frame queue is semantically corrupt or the cache
			// invariant broke; nothing downstream of the builder can
			// make progress, so stop the receivers too.
			cancel()
		}
		return err
	})

	go func() {
		err := g.Wait()
		close(events)
		if err != nil {
			runErr <- classify(err)
		}
		close(runErr)
	}()

	c.cancel = cancel
	c.group = g
	c.events = events
	c.runErr = runErr
	c.connected = true

	logging.Infof("conduit: connected, %d receivers, cache budget %d frames", c.cfg.NumberOfCobos, maxCacheSize)
	return nil
}

// classify tags a task-group error by which subsystem most likely raised
// it, so callers can tell receiver faults from builder faults without
// inspecting error internals. Builder errors are the only non-receiver
// source in the group, so anything that isn't a *builder.Error is
// attributed to a receiver.
func classify(err error) error {
	if _, ok := err.(*builder.Error); ok {
		return cerrors.FailedEventBuilder(err)
	}
	return cerrors.BrokenReceiver(err)
}

// Disconnect cancels the task group and waits for it to unwind. Calling
// Disconnect while already disconnected is a no-op: it logs a warning and
// returns nil.
func (c *Conduit) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		logging.Warnf("conduit: Disconnect called while already disconnected, ignoring")
		return nil
	}

	c.cancel()
	err := <-c.runErr

	c.connected = false
	c.cancel = nil
	c.group = nil
	c.events = nil
	c.runErr = nil

	logging.Infof("conduit: disconnected")
	return err
}

// PollEvents returns the next finished event's id and matrix, draining
// non-blockingly: ok is false when no event is currently available,
// which callers should treat as "poll again later", not as shutdown.
// Once the underlying channel is closed (the task group has stopped),
// PollEvents still returns the events left buffered in it, then keeps
// returning ok=false.
func (c *Conduit) PollEvents() (eventID uint32, matrix event.Matrix, ok bool) {
	c.mu.Lock()
	events := c.events
	c.mu.Unlock()

	if events == nil {
		return 0, event.Matrix{}, false
	}

	select {
	case ev, open := <-events:
		if !open || ev == nil {
			return 0, event.Matrix{}, false
		}
		return ev.EventID(), ev.ToMatrix(), true
	default:
		return 0, event.Matrix{}, false
	}
}
