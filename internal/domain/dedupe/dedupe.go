// Package dedupe tracks ingestion fingerprints so unchanged text is not
// embedded twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Digest fingerprints ingestion text.
func Digest(text string) uint64 {
	return xxhash.Sum64String(text)
}

// Tracker remembers the last successfully embedded digest per entity key.
type Tracker interface {
	// Unchanged reports whether digest equals the last recorded digest for key.
	Unchanged(ctx context.Context, key string, digest uint64) bool

	// Record stores digest for key after the embedding it describes was
	// written. It replaces any previous digest.
	Record(ctx context.Context, key string, digest uint64)

	// Forget drops key, forcing the next ingestion to run inference.
	Forget(ctx context.Context, key string)

	Size() int64
}

// node is one entry of the eviction list
type node struct {
	key    string
	digest uint64
	next   *node
}

func (n *node) reset() {
	n.key = ""
	n.digest = 0
	n.next = nil
}

// inMemoryTracker keeps digests in a map. In bounded mode (maxSize > 0) keys
// are also threaded on a list, newest at head, and the oldest key is evicted
// when full. Eviction only costs a redundant inference later.
type inMemoryTracker struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryTracker creates a tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	d := &inMemoryTracker{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*node)
	d.nodePool = sync.Pool{
		New: func() any {
			return &node{}
		},
	}
	return d
}

// Unchanged implements Tracker.
func (d *inMemoryTracker) Unchanged(ctx context.Context, key string, digest uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.seen[key]
	return ok && n.digest == digest
}

// Record implements Tracker.
func (d *inMemoryTracker) Record(ctx context.Context, key string, digest uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.seen[key]; ok {
		n.digest = digest
		return
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	n := d.nodePool.Get().(*node)
	n.key = key
	n.digest = digest
	if d.maxSize > 0 {
		n.next = d.head
		d.head = n
	}
	d.seen[key] = n
	d.size.Add(1)
}

// Forget implements Tracker.
func (d *inMemoryTracker) Forget(ctx context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)

	if d.maxSize > 0 {
		if d.head == n {
			d.head = n.next
		} else {
			cur := d.head
			for cur != nil && cur.next != n {
				cur = cur.next
			}
			if cur != nil {
				cur.next = n.next
			}
		}
	}
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}

// evictOldest removes the tail of the list. Caller holds d.mu.
func (d *inMemoryTracker) evictOldest() {
	if d.head == nil {
		return
	}
	if d.head.next == nil {
		delete(d.seen, d.head.key)
		d.head.reset()
		d.nodePool.Put(d.head)
		d.head = nil
		d.size.Add(-1)
		return
	}

	prev, cur := d.head, d.head.next
	for cur.next != nil {
		prev, cur = cur, cur.next
	}
	prev.next = nil
	delete(d.seen, cur.key)
	cur.reset()
	d.nodePool.Put(cur)
	d.size.Add(-1)
}

// Size returns the number of tracked keys.
func (d *inMemoryTracker) Size() int64 {
	return d.size.Load()
}
