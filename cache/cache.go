package cache

import (
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a string cache key.
const MaxKeyLength = 8192

// Sentinel errors for cache operations.
var (
	ErrInvalidKey    = errors.New("cache: key is invalid")
	ErrKeyTooLong    = errors.New("cache: key exceeds max length")
	ErrInvalidPolicy = errors.New("cache: invalid policy")
)

// Cache is a size-bounded key/value store.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Bound: Len never exceeds the configured capacity after Add returns.
// - Errors: Get never errors; it returns (zero, false) on miss or expiry.
type Cache[K comparable, V any] interface {
	// Get retrieves a cached value.
	Get(key K) (V, bool)

	// Add stores value under key and reports whether an entry was evicted.
	Add(key K, value V) bool

	// Remove deletes key and reports whether it was present.
	Remove(key K) bool

	// Len returns the number of entries.
	Len() int

	// Purge removes all entries.
	Purge()
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
	Capacity  int
}

// HitRatio returns hits / (hits + misses), or 0 with no lookups.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Fill returns Size / Capacity, or 0 for an unbounded or disabled cache.
func (s Stats) Fill() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	return float64(s.Size) / float64(s.Capacity)
}

// ValidateKey checks if a string key is valid for caching.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
