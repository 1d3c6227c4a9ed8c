package health

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/agentguard/audit"
	"github.com/jonwraymond/agentguard/cache"
	"github.com/jonwraymond/agentguard/token"
)

// SigningKeyChecker reports unhealthy while no signing secret resolves.
type SigningKeyChecker struct {
	codec *token.Codec
}

// NewSigningKeyChecker creates a checker for codec's key source.
func NewSigningKeyChecker(codec *token.Codec) *SigningKeyChecker {
	return &SigningKeyChecker{codec: codec}
}

// Name returns "signing_key".
func (c *SigningKeyChecker) Name() string { return "signing_key" }

// Check resolves the signing key. The key itself is never reported.
func (c *SigningKeyChecker) Check(ctx context.Context) Result {
	if err := c.codec.SigningKeyAvailable(ctx); err != nil {
		return Unhealthy("signing secret not configured", err)
	}
	return Healthy("signing secret resolved")
}

// CacheStatsSource exposes decode cache statistics.
type CacheStatsSource interface {
	CacheStats() cache.Stats
}

// CacheCheckerConfig configures CacheChecker.
type CacheCheckerConfig struct {
	// MinHitRatio is the hit ratio below which an evicting cache reports
	// degraded. Value should be between 0 and 1. Default: 0.5
	MinHitRatio float64

	// MinLookups is the number of lookups an interval needs before its hit
	// ratio is judged. Default: 100
	MinLookups uint64
}

// CacheChecker reports the decode cache as degraded when it thrashes: in the
// interval since the previous check it evicted entries while its hit ratio
// stayed below MinHitRatio. A full cache with a good hit ratio is healthy.
type CacheChecker struct {
	src    CacheStatsSource
	config CacheCheckerConfig

	mu   sync.Mutex
	last cache.Stats
}

// NewCacheChecker creates a cache checker.
func NewCacheChecker(src CacheStatsSource, config CacheCheckerConfig) *CacheChecker {
	if config.MinHitRatio <= 0 || config.MinHitRatio > 1 {
		config.MinHitRatio = 0.5
	}
	if config.MinLookups == 0 {
		config.MinLookups = 100
	}
	return &CacheChecker{src: src, config: config}
}

// Name returns "decode_cache".
func (c *CacheChecker) Name() string { return "decode_cache" }

// Check inspects the cache statistics gathered since the previous check.
func (c *CacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	s := c.src.CacheStats()
	w := c.interval(s)
	lookups := w.Hits + w.Misses
	details := map[string]any{
		"size":               s.Size,
		"capacity":           s.Capacity,
		"hits":               s.Hits,
		"misses":             s.Misses,
		"evictions":          s.Evictions,
		"hit_ratio":          s.HitRatio(),
		"fill_ratio":         s.Fill(),
		"interval_lookups":   lookups,
		"interval_evictions": w.Evictions,
		"interval_hit_ratio": w.HitRatio(),
	}

	if s.Capacity == 0 {
		return Healthy("caching disabled").WithDetails(details)
	}
	if w.Evictions > 0 && lookups >= c.config.MinLookups && w.HitRatio() < c.config.MinHitRatio {
		return Degraded(fmt.Sprintf("cache thrashing: %.1f%% hit ratio with %d evictions",
			w.HitRatio()*100, w.Evictions)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("cache %.1f%% hit ratio", w.HitRatio()*100)).WithDetails(details)
}

// interval returns the counter deltas since the previous call and records s.
// Counters that went backwards are taken from zero.
func (c *CacheChecker) interval(s cache.Stats) cache.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := s
	if s.Hits >= c.last.Hits && s.Misses >= c.last.Misses && s.Evictions >= c.last.Evictions {
		w.Hits -= c.last.Hits
		w.Misses -= c.last.Misses
		w.Evictions -= c.last.Evictions
	}
	c.last = s
	return w
}

// AuditStatsSource exposes asynchronous audit sink statistics.
type AuditStatsSource interface {
	Stats() audit.AsyncStats
}

// AuditChecker reports unhealthy when the audit workers are not running and
// degraded once entries have been dropped or the buffer is nearly full.
type AuditChecker struct {
	src AuditStatsSource
}

// NewAuditChecker creates an audit sink checker.
func NewAuditChecker(src AuditStatsSource) *AuditChecker {
	return &AuditChecker{src: src}
}

// Name returns "audit".
func (c *AuditChecker) Name() string { return "audit" }

// Check inspects the sink statistics.
func (c *AuditChecker) Check(context.Context) Result {
	s := c.src.Stats()
	details := map[string]any{
		"pending":     s.Pending,
		"buffer_size": s.BufferSize,
		"workers":     s.Workers,
		"dropped":     s.Dropped,
		"failed":      s.Failed,
	}

	switch {
	case !s.Started:
		return Unhealthy("audit workers not running", ErrCheckFailed).WithDetails(details)
	case s.Dropped > 0:
		return Degraded(fmt.Sprintf("%d audit entries dropped", s.Dropped)).WithDetails(details)
	case s.BufferSize > 0 && float64(s.Pending)/float64(s.BufferSize) > 0.9:
		return Degraded("audit buffer nearly full").WithDetails(details)
	default:
		return Healthy("audit workers running").WithDetails(details)
	}
}
