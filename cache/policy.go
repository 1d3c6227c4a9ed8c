package cache

import (
	"fmt"
	"strings"
	"time"
)

// Eviction selects which entry is dropped when the cache is full.
type Eviction string

const (
	// EvictLRU drops the least recently read or written entry.
	EvictLRU Eviction = "lru"

	// EvictFIFO drops the oldest inserted entry; reads do not refresh it.
	EvictFIFO Eviction = "fifo"
)

// DefaultMaxEntries is the default cache bound.
const DefaultMaxEntries = 1000

// Policy configures a Bounded cache.
type Policy struct {
	// MaxEntries bounds the number of entries. Zero disables caching.
	MaxEntries int

	// Eviction selects the replacement order. Empty means EvictLRU.
	Eviction Eviction

	// TTL expires entries this long after they were stored.
	// Zero means entries never expire.
	TTL time.Duration
}

// DefaultPolicy returns the default caching policy.
// MaxEntries: 1000, Eviction: LRU, TTL: none
func DefaultPolicy() Policy {
	return Policy{
		MaxEntries: DefaultMaxEntries,
		Eviction:   EvictLRU,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{Eviction: EvictLRU}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.MaxEntries > 0
}

// Validate reports whether p is usable.
func (p Policy) Validate() error {
	if p.MaxEntries < 0 {
		return fmt.Errorf("%w: max entries %d < 0", ErrInvalidPolicy, p.MaxEntries)
	}
	if p.TTL < 0 {
		return fmt.Errorf("%w: ttl %s < 0", ErrInvalidPolicy, p.TTL)
	}
	if _, err := ParseEviction(string(p.Eviction)); err != nil {
		return err
	}
	return nil
}

// ParseEviction parses an eviction name. Empty selects EvictLRU.
func ParseEviction(s string) (Eviction, error) {
	switch Eviction(strings.ToLower(strings.TrimSpace(s))) {
	case "", EvictLRU:
		return EvictLRU, nil
	case EvictFIFO:
		return EvictFIFO, nil
	default:
		return "", fmt.Errorf("%w: unknown eviction %q", ErrInvalidPolicy, s)
	}
}
