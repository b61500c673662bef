package client

import (
	"sync"

	"github.com/orderdesk/api/internal/query"
)

// Kind is a cache namespace: list pages, order details, or stats.
type Kind string

const (
	KindList   Kind = "list"
	KindDetail Kind = "detail"
	KindStats  Kind = "stats"
)

// Key identifies one cache entry: a namespace plus the canonical form of the
// query that produced it.
type Key struct {
	Kind Kind
	Key  string
}

// ListKey returns the cache key for a list page.
func ListKey(f query.Filter) Key { return Key{KindList, f.Key()} }

// StatsKey returns the cache key for a stats result.
func StatsKey(f query.Filter) Key { return Key{KindStats, f.WithoutPagination().Key()} }

// DetailKey returns the cache key for an order detail.
func DetailKey(orderID string) Key { return Key{KindDetail, orderID} }

// Entry is a cached value with the revision at which it was last written.
type Entry struct {
	Value    interface{}
	Revision uint64
}

// Snapshot captures the state of one namespace so an optimistic mutation can
// be rolled back without re-running it.
type Snapshot struct {
	kind    Kind
	entries map[Key]interface{}
}

// Cache holds the last-known query results. It is the only shared resource of
// the client side, and it is mutated only by query completions and by the
// mutation coordinator's optimistic-write/rollback steps. All mutation
// happens under one mutex, so every patch is atomic with respect to
// interleaving.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]Entry
	rev     uint64

	// issued is the generation handed to the most recently initiated query
	// per namespace; barrier is the minimum generation still allowed to land.
	// Bumping the barrier supersedes every in-flight read at once.
	issued  map[Kind]uint64
	barrier map[Kind]uint64
	applied map[Key]uint64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[Key]Entry),
		issued:  make(map[Kind]uint64),
		barrier: make(map[Kind]uint64),
		applied: make(map[Key]uint64),
	}
}

// BeginQuery registers a newly initiated read and returns its generation.
// Pass the generation to CompleteQuery when the result arrives.
func (c *Cache) BeginQuery(kind Kind) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued[kind]++
	return c.issued[kind]
}

// CompleteQuery records a finished read. The write is discarded when an
// optimistic mutation superseded the read (generation below the namespace
// barrier) or when a later-initiated read for the same key already landed:
// the most recently initiated query wins.
func (c *Cache) CompleteQuery(key Key, gen uint64, value interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen < c.barrier[key.Kind] {
		return false
	}
	if gen < c.applied[key] {
		return false
	}
	c.applied[key] = gen
	c.storeLocked(key, value)
	return true
}

// Get returns the cached value for a key.
func (c *Cache) Get(key Key) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// GetEntry returns the cached entry, including its revision.
func (c *Cache) GetEntry(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

// Set writes a value unconditionally, outside the query ordering protocol.
func (c *Cache) Set(key Key, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(key, value)
}

// Invalidate drops one entry; a subsequent read must refetch.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	delete(c.applied, key)
}

// InvalidateKind drops every entry in a namespace.
func (c *Cache) InvalidateKind(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.Kind == kind {
			delete(c.entries, key)
			delete(c.applied, key)
		}
	}
}

// Len reports the number of cached entries in a namespace.
func (c *Cache) Len(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.entries {
		if key.Kind == kind {
			n++
		}
	}
	return n
}

// ApplyOptimistic atomically rewrites a namespace: it snapshots the current
// entries, passes each value through fn, and replaces those fn reports as
// changed. When at least one entry changed, the namespace barrier advances so
// every in-flight read is superseded and cannot clobber the optimistic state,
// and the pre-patch snapshot is returned for rollback. When nothing changed
// no snapshot is taken and ok is false: a no-op mutation must not trigger a
// pointless rewrite/rollback cycle.
func (c *Cache) ApplyOptimistic(kind Kind, fn func(value interface{}) (interface{}, bool)) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var patched map[Key]interface{}
	snap := Snapshot{kind: kind, entries: make(map[Key]interface{})}

	for key, e := range c.entries {
		if key.Kind != kind {
			continue
		}
		next, changed := fn(e.Value)
		if changed {
			if patched == nil {
				patched = make(map[Key]interface{})
			}
			patched[key] = next
		}
		snap.entries[key] = e.Value
	}

	if patched == nil {
		return Snapshot{}, false
	}

	for key, v := range patched {
		c.storeLocked(key, v)
	}
	c.barrier[kind] = c.issued[kind] + 1
	return snap, true
}

// Restore writes every snapshotted entry back verbatim, overwriting the
// optimistic state.
func (c *Cache) Restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, v := range snap.entries {
		c.storeLocked(key, v)
	}
}

func (c *Cache) storeLocked(key Key, value interface{}) {
	c.rev++
	c.entries[key] = Entry{Value: value, Revision: c.rev}
}
