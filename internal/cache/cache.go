// Package cache implements EventCache, the LRU-ordered bounded map of
// in-flight Events the EventBuilder reassembles frames into.
package cache

import (
	"github.com/gwm17/attpc-conduit/internal/event"
	"github.com/gwm17/attpc-conduit/internal/fastmap"
	"github.com/gwm17/attpc-conduit/internal/graw"
	"github.com/gwm17/attpc-conduit/internal/padmap"
)

// BrokenError reports an invariant violation between the events map and
// the order sequence. It is never expected in practice; its
// presence signals a bug rather than a recoverable condition.
type BrokenError struct{ Detail string }

func (e *BrokenError) Error() string { return "cache: broken invariant: " + e.Detail }

// EventCache holds in-flight Events keyed by event id, ordered from
// least-recently-modified (front) to most-recently-modified (back). Not
// safe for concurrent use: owned exclusively by one EventBuilder goroutine.
type EventCache struct {
	events *fastmap.Map[uint32, *event.Event]
	order  []uint32
}

// New creates an empty EventCache.
func New() *EventCache {
	return &EventCache{
		events: fastmap.New[uint32, *event.Event](fastmap.Uint32Key),
		order:  make([]uint32, 0),
	}
}

// AddFrame merges frame into the event it belongs to, creating a new
// Event if this is the first frame seen for that event id, and moves the
// event to the back of the order (most-recently-modified).
func (c *EventCache) AddFrame(pads *padmap.PadMap, frame graw.Frame) error {
	id := frame.Header.EventID

	ev, found := c.events.Get(id)
	if !found {
		ev = event.New()
		if err := ev.AppendFrame(pads, frame); err != nil {
			return err
		}
		c.events.Set(id, ev)
		c.order = append(c.order, id)
		return nil
	}

	if err := ev.AppendFrame(pads, frame); err != nil {
		return err
	}
	c.moveToBack(id)
	return nil
}

func (c *EventCache) moveToBack(id uint32) {
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, id)
}

// PopLRU removes and returns the least-recently-modified event.
func (c *EventCache) PopLRU() (*event.Event, error) {
	if len(c.order) == 0 {
		return nil, &BrokenError{Detail: "order is empty but PopLRU was called"}
	}
	id := c.order[0]
	c.order = c.order[1:]

	ev, found := c.events.Get(id)
	if !found {
		return nil, &BrokenError{Detail: "order referenced an event id not present in events"}
	}
	c.events.Delete(id)
	return ev, nil
}

// Size returns the sum of NFrames across every resident event, the unit
// the cache's eviction threshold is measured in.
func (c *EventCache) Size() int {
	total := 0
	c.events.Range(func(_ uint32, ev *event.Event) bool {
		total += ev.NFrames()
		return true
	})
	return total
}

// Len returns the number of resident events.
func (c *EventCache) Len() int { return c.events.Len() }
