// Package dedupe tracks event ids that have already been accepted for filtering.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 50000

// Deduper records seen event IDs to ensure at-most-once filtering.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a later submission is accepted again. Used when an
	// event was recorded but could not be queued. In a bounded deduper the freed
	// ring slot stays empty until the ring wraps back to it, so each rollback
	// lowers the remembered capacity by one until then.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type slot struct {
	id   string
	used bool
}

// inMemoryDeduper keeps ids in a map. When bounded, a ring of insertion order
// evicts the oldest id once the ring wraps.
type inMemoryDeduper struct {
	mu      sync.RWMutex
	seen    map[string]int // id -> ring slot, -1 when unbounded
	ring    []slot
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.ring == nil {
		d.seen[id] = -1
		return false
	}

	s := &d.ring[d.next]
	if s.used {
		delete(d.seen, s.id)
	}
	s.id, s.used = id, true
	d.seen[id] = d.next
	d.next = (d.next + 1) % len(d.ring)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pos, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)
	if pos >= 0 {
		d.ring[pos] = slot{}
	}
}

// Size returns the number of ids currently remembered.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return int64(len(d.seen))
}
