// Package fastmap provides a small generic hash map whose bucket
// placement is driven by xxhash instead of Go's runtime hash. This
// mirrors the original Rust implementation's deliberate choice of
// FxHashMap for PadMap, Event traces, and EventCache: the hash only
// needs to be fast and well distributed, never cryptographically
// strong, since every key in this system is internal and untrusted-input
// free (hardware coordinates and event ids produced by the GRAW codec).
package fastmap

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
)

const defaultBuckets = 16

// KeyBytes encodes a key into bytes for hashing. Callers provide this
// once per key type; correctness of Map never depends on the quality of
// the encoding, only performance does.
type KeyBytes[K any] func(K) []byte

type entry[K comparable, V any] struct {
	key K
	val V
}

// Map is a hash map keyed by any comparable K, with xxhash-based bucket
// placement. It is not safe for concurrent use; every caller in this
// repository owns its Map exclusively (PadMap after load, Event/EventCache
// from within the single EventBuilder goroutine).
type Map[K comparable, V any] struct {
	buckets [][]entry[K, V]
	count   int
	encode  KeyBytes[K]
}

// New creates an empty Map using encode to turn keys into bytes for
// hashing.
func New[K comparable, V any](encode KeyBytes[K]) *Map[K, V] {
	return &Map[K, V]{
		buckets: make([][]entry[K, V], defaultBuckets),
		encode:  encode,
	}
}

func (m *Map[K, V]) bucketIndex(k K) int {
	h := xxhash.Checksum64(m.encode(k))
	return int(h % uint64(len(m.buckets)))
}

// Get returns the value for k and whether it was present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	idx := m.bucketIndex(k)
	for _, e := range m.buckets[idx] {
		if e.key == k {
			return e.val, true
		}
	}
	var zero V
	return zero, false
}

// Set inserts or updates the value for k.
func (m *Map[K, V]) Set(k K, v V) {
	idx := m.bucketIndex(k)
	for i, e := range m.buckets[idx] {
		if e.key == k {
			m.buckets[idx][i].val = v
			return
		}
	}
	m.buckets[idx] = append(m.buckets[idx], entry[K, V]{key: k, val: v})
	m.count++
	if m.count > len(m.buckets)*4 {
		m.grow()
	}
}

// Delete removes k, if present.
func (m *Map[K, V]) Delete(k K) {
	idx := m.bucketIndex(k)
	bucket := m.buckets[idx]
	for i, e := range bucket {
		if e.key == k {
			m.buckets[idx] = append(bucket[:i], bucket[i+1:]...)
			m.count--
			return
		}
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.count }

// Range calls fn for every entry, in unspecified order. fn returning
// false stops iteration early.
func (m *Map[K, V]) Range(fn func(K, V) bool) {
	for _, bucket := range m.buckets {
		for _, e := range bucket {
			if !fn(e.key, e.val) {
				return
			}
		}
	}
}

func (m *Map[K, V]) grow() {
	old := m.buckets
	m.buckets = make([][]entry[K, V], len(old)*2)
	for _, bucket := range old {
		for _, e := range bucket {
			idx := m.bucketIndex(e.key)
			m.buckets[idx] = append(m.buckets[idx], e)
		}
	}
}

// Uint32Key encodes a uint32 (event id) key.
func Uint32Key(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}
