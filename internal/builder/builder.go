// Package builder implements the EventBuilder task: the single consumer
// of decoded frames, which accumulates them into an EventCache and emits
// least-recently-modified events once the cache exceeds its frame budget.
package builder

import (
	"context"

	"github.com/gwm17/attpc-conduit/internal/cache"
	"github.com/gwm17/attpc-conduit/internal/event"
	"github.com/gwm17/attpc-conduit/internal/graw"
	"github.com/gwm17/attpc-conduit/internal/logging"
	"github.com/gwm17/attpc-conduit/internal/padmap"
)

// Builder drains a frame channel into an EventCache and forwards evicted
// events downstream.
type Builder struct {
	pads         *padmap.PadMap
	frameSource  <-chan graw.Frame
	eventSink    chan<- *event.Event
	cache        *cache.EventCache
	maxCacheSize int
}

// New constructs a Builder. pads is held by pointer and only read for the
// builder's lifetime.
func New(pads *padmap.PadMap, frameSource <-chan graw.Frame, eventSink chan<- *event.Event, maxCacheSize int) *Builder {
	return &Builder{
		pads:         pads,
		frameSource:  frameSource,
		eventSink:    eventSink,
		cache:        cache.New(),
		maxCacheSize: maxCacheSize,
	}
}

// Run drains frames until ctx is cancelled or the frame source closes.
// Cancellation and channel closure both return nil (orderly shutdown,
// the ClosedChannel policy); EventError and BrokenCache terminate the
// task and are returned to the caller for propagation.
func (b *Builder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-b.frameSource:
			if !ok {
				logging.Infof("event builder: frame source closed, shutting down")
				return nil
			}
			if err := b.ingest(ctx, frame); err != nil {
				return err
			}
		}
	}
}

func (b *Builder) ingest(ctx context.Context, frame graw.Frame) error {
	if err := b.cache.AddFrame(b.pads, frame); err != nil {
		return wrapEventError(err)
	}

	if b.cache.Size() <= b.maxCacheSize {
		return nil
	}

	ev, err := b.cache.PopLRU()
	if err != nil {
		return brokenCache(err)
	}

	select {
	case b.eventSink <- ev:
		return nil
	case <-ctx.Done():
		return nil
	}
}
