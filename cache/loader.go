package cache

import (
	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a missing key.
type LoadFunc[V any] func() (V, error)

// Loader fills a Bounded cache on demand.
//
// Concurrent misses for the same key share a single call to the load
// function. Errors are never cached: a failed load leaves the key absent so
// the next lookup loads again.
type Loader[V any] struct {
	cache *Bounded[string, V]
	keyer Keyer
	group singleflight.Group
}

// NewLoader creates a loader backed by a new Bounded cache.
// If keyer is nil, RawKeyer is used.
func NewLoader[V any](policy Policy, keyer Keyer) (*Loader[V], error) {
	c, err := NewBounded[string, V](policy)
	if err != nil {
		return nil, err
	}
	if keyer == nil {
		keyer = RawKeyer{}
	}
	return &Loader[V]{cache: c, keyer: keyer}, nil
}

// GetOrLoad returns the cached value for raw, calling load on a miss.
// hit reports whether the value came from the cache.
//
// Keys that fail ValidateKey bypass the cache and call load directly.
func (l *Loader[V]) GetOrLoad(raw string, load LoadFunc[V]) (value V, hit bool, err error) {
	if ValidateKey(raw) != nil {
		value, err = load()
		return value, false, err
	}

	key := l.keyer.Key(raw)
	if v, ok := l.cache.Get(key); ok {
		return v, true, nil
	}

	res, err, _ := l.group.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return v, err
		}
		l.cache.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, _ := res.(V)
	return v, false, nil
}

// Forget removes raw from the cache.
func (l *Loader[V]) Forget(raw string) bool {
	return l.cache.Remove(l.keyer.Key(raw))
}

// Cached reports whether raw currently has a cached value.
func (l *Loader[V]) Cached(raw string) bool {
	return l.cache.Contains(l.keyer.Key(raw))
}

// Purge empties the cache.
func (l *Loader[V]) Purge() { l.cache.Purge() }

// Len returns the number of cached entries.
func (l *Loader[V]) Len() int { return l.cache.Len() }

// Stats returns the underlying cache statistics.
func (l *Loader[V]) Stats() Stats { return l.cache.Stats() }
