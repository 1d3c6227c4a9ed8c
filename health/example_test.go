package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/agentguard/cache"
	"github.com/jonwraymond/agentguard/health"
	"github.com/jonwraymond/agentguard/token"
)

type thrashingCache struct{}

func (thrashingCache) CacheStats() cache.Stats {
	return cache.Stats{Size: 100, Capacity: 100, Hits: 10, Misses: 990, Evictions: 890}
}

func ExampleAggregator_Run() {
	agg := health.NewAggregator()
	agg.Register("signing_key", health.NewSigningKeyChecker(token.NewCodec(token.StaticKey("secret"))))
	agg.Register("decode_cache", health.NewCacheChecker(thrashingCache{}, health.CacheCheckerConfig{}))

	report := agg.Run(context.Background())
	fmt.Println(report.Status)
	fmt.Println(report.Checks["signing_key"].Status)
	fmt.Println(report.Checks["decode_cache"].Message)
	// Output:
	// degraded
	// healthy
	// cache thrashing: 1.0% hit ratio with 890 evictions
}
