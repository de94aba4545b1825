package cache_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gwm17/attpc-conduit/internal/cache"
	"github.com/gwm17/attpc-conduit/internal/graw"
	"github.com/gwm17/attpc-conduit/internal/padmap"
)

func loadPads() *padmap.PadMap {
	dir, err := os.MkdirTemp("", "padmap")
	Expect(err).NotTo(HaveOccurred())
	path := filepath.Join(dir, "padmap.csv")
	Expect(os.WriteFile(path, []byte("0,0,0,0,1\n"), 0o644)).To(Succeed())
	pads, err := padmap.Load(path)
	Expect(err).NotTo(HaveOccurred())
	return pads
}

func frame(eventID uint32) graw.Frame {
	return graw.Frame{
		Header: graw.Header{EventID: eventID, EventTime: uint64(eventID), CoboID: 0, AsadID: 0},
		Data:   []graw.Datum{{AgetID: 0, Channel: 0, TimeBucket: 0, Sample: 1}},
	}
}

var _ = Describe("EventCache", func() {
	var (
		pads *padmap.PadMap
		c    *cache.EventCache
	)

	BeforeEach(func() {
		pads = loadPads()
		c = cache.New()
	})

	Context("when a deployment's budget is exceeded", func() {
		It("evicts the least-recently-modified event first", func() {
			Expect(c.AddFrame(pads, frame(1))).To(Succeed())
			Expect(c.AddFrame(pads, frame(2))).To(Succeed())
			Expect(c.AddFrame(pads, frame(3))).To(Succeed())

			ev, err := c.PopLRU()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.EventID()).To(Equal(uint32(1)))
		})
	})

	Context("when an event already in the cache receives another frame", func() {
		It("moves that event to the back of the eviction order", func() {
			Expect(c.AddFrame(pads, frame(1))).To(Succeed())
			Expect(c.AddFrame(pads, frame(2))).To(Succeed())
			Expect(c.AddFrame(pads, frame(1))).To(Succeed())

			ev, err := c.PopLRU()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.EventID()).To(Equal(uint32(2)))
		})
	})

	Context("with no resident events", func() {
		It("reports a broken cache rather than panicking", func() {
			_, err := c.PopLRU()
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&cache.BrokenError{}))
		})
	})
})
