// Package cache provides a bounded in-memory cache for decoded tokens.
//
// Bounded is a generic size-capped map with LRU or FIFO eviction and an
// optional TTL. Loader layers load-on-miss over it: concurrent misses for the
// same key share one load, and only successful loads are stored.
package cache
