// Package bytecache provides a cost-bounded, least-recently-used cache of
// byte blobs keyed by storage location.
//
// A single Cache is meant to be shared by every asset in the process. It is
// constructed explicitly and injected, so tests can use an isolated instance.
package bytecache

import (
	"math"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"golang.org/x/sync/singleflight"
)

// DefaultUnit is the number of bytes per cost unit. Blobs smaller than one
// unit cost zero.
const DefaultUnit = 1_000_000

type entry struct {
	blob []byte
	cost int64
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Entries   int
	TotalCost int64
	Capacity  int64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache maps a key to a blob with an associated cost. The sum of costs is kept
// at or below the capacity, except that the most recently inserted entry is
// never evicted by its own insertion: a blob costing more than the whole
// capacity is still stored and becomes the next eviction candidate.
//
// Cache is safe for concurrent use and never performs I/O.
type Cache struct {
	group singleflight.Group

	mu        sync.Mutex
	lru       *simplelru.LRU[string, entry]
	capacity  int64
	unit      int64
	total     int64
	hits      uint64
	misses    uint64
	evictions uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithUnit overrides the number of bytes per cost unit used by Cost.
func WithUnit(bytes int64) Option {
	return func(c *Cache) {
		if bytes > 0 {
			c.unit = bytes
		}
	}
}

// New creates a cache holding at most capacity cost units.
func New(capacity int64, opts ...Option) *Cache {
	// Count-based eviction is disabled by sizing the list beyond any
	// reachable entry count; eviction is driven by cost alone.
	lru, err := simplelru.NewLRU[string, entry](math.MaxInt32, nil)
	if err != nil {
		panic("[bytecache]: " + err.Error())
	}

	c := &Cache{
		lru:      lru,
		capacity: max(capacity, 0),
		unit:     DefaultUnit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cost converts a byte count into cost units, rounding down.
func (c *Cache) Cost(n int) int64 {
	return int64(n) / c.unit
}

// Get returns the blob stored under key and marks it as recently used.
// Callers must treat the returned slice as read-only.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return e.blob, true
}

// Put stores blob under key, replacing any previous value, then evicts least
// recently used entries until the total cost fits the capacity.
func (c *Cache) Put(key string, blob []byte, cost int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cost = max(cost, 0)

	if old, ok := c.lru.Peek(key); ok {
		c.total -= old.cost
	}
	c.lru.Add(key, entry{blob: blob, cost: cost})
	c.total += cost

	// key is the newest entry, so while more than one entry remains the
	// oldest one is never the blob just inserted.
	for c.total > c.capacity && c.lru.Len() > 1 {
		_, e, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		c.total -= e.cost
		c.evictions++
	}
}

// Remove drops key, for callers that know the source behind it changed.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lru.Peek(key); ok {
		c.total -= e.cost
		c.lru.Remove(key)
	}
}

// Load returns the blob under key, calling read on a miss and storing its
// result with a cost derived from its length. Concurrent misses on the same
// key share a single read. hit reports whether the blob was already resident.
// A failed read stores nothing.
func (c *Cache) Load(key string, read func() ([]byte, error)) (blob []byte, hit bool, err error) {
	if blob, ok := c.Get(key); ok {
		return blob, true, nil
	}
	blob, err = c.Fill(key, read)
	return blob, false, err
}

// Fill is the miss half of Load for callers that already checked Get: it
// calls read and stores the result without counting another lookup.
// Concurrent fills of the same key share a single read.
func (c *Cache) Fill(key string, read func() ([]byte, error)) ([]byte, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		data, readErr := read()
		if readErr != nil {
			return nil, readErr
		}
		c.Put(key, data, c.Cost(len(data)))
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	data, _ := v.([]byte)
	return data, nil
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// TotalCost returns the sum of resident costs.
func (c *Cache) TotalCost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Capacity returns the configured cost capacity.
func (c *Cache) Capacity() int64 {
	return c.capacity
}

// Keys returns resident keys from least to most recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   c.lru.Len(),
		TotalCost: c.total,
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
