package cache

import (
	"container/list"
	"sync"
	"time"
)

// Bounded is an in-memory cache holding at most Policy.MaxEntries entries.
//
// When full, Add evicts one entry before inserting. With EvictLRU the victim
// is the least recently used entry; with EvictFIFO it is the oldest insert.
// Expired entries are removed lazily on Get.
type Bounded[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*list.Element
	order   *list.List // front = most recent
	policy  Policy
	now     func() time.Time

	hits      uint64
	misses    uint64
	evictions uint64
}

type entry[K comparable, V any] struct {
	key      K
	value    V
	storedAt time.Time
}

// NewBounded creates a bounded cache with the given policy.
func NewBounded[K comparable, V any](policy Policy) (*Bounded[K, V], error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	policy.Eviction, _ = ParseEviction(string(policy.Eviction))
	return &Bounded[K, V]{
		entries: make(map[K]*list.Element, policy.MaxEntries),
		order:   list.New(),
		policy:  policy,
		now:     time.Now,
	}, nil
}

// Get retrieves a value. Returns (zero, false) on miss or expiry.
func (c *Bounded[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.expired(e) {
		c.removeElement(el)
		c.misses++
		var zero V
		return zero, false
	}

	if c.policy.Eviction == EvictLRU {
		c.order.MoveToFront(el)
	}
	c.hits++
	return e.value, true
}

// Add stores value under key. It returns true if another entry was evicted
// to make room. Add is a no-op when the policy disables caching.
func (c *Bounded[K, V]) Add(key K, value V) bool {
	if !c.policy.ShouldCache() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.storedAt = now
		if c.policy.Eviction == EvictLRU {
			c.order.MoveToFront(el)
		}
		return false
	}

	evicted := false
	for c.order.Len() >= c.policy.MaxEntries {
		c.removeElement(c.order.Back())
		c.evictions++
		evicted = true
	}

	c.entries[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, storedAt: now})
	return evicted
}

// Remove deletes key. Idempotent.
func (c *Bounded[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

// Contains reports whether key is cached without touching recency or counters.
func (c *Bounded[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	return ok && !c.expired(el.Value.(*entry[K, V]))
}

// Len returns the number of entries, including expired ones not yet removed.
func (c *Bounded[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge removes all entries. Counters are kept.
func (c *Bounded[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*list.Element, c.policy.MaxEntries)
	c.order.Init()
}

// Stats returns a snapshot of the cache counters.
func (c *Bounded[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.order.Len(),
		Capacity:  c.policy.MaxEntries,
	}
}

// Policy returns the normalized policy the cache was built with.
func (c *Bounded[K, V]) Policy() Policy { return c.policy }

func (c *Bounded[K, V]) expired(e *entry[K, V]) bool {
	return c.policy.TTL > 0 && c.now().Sub(e.storedAt) > c.policy.TTL
}

func (c *Bounded[K, V]) removeElement(el *list.Element) {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.entries, e.key)
}

// Ensure Bounded implements Cache
var _ Cache[string, int] = (*Bounded[string, int])(nil)
