package health

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonwraymond/agentguard/cache"
)

func BenchmarkAggregator_Run(b *testing.B) {
	for _, n := range []int{1, 5, 20} {
		b.Run(fmt.Sprintf("checkers=%d", n), func(b *testing.B) {
			agg := NewAggregator()
			for i := 0; i < n; i++ {
				name := fmt.Sprintf("c%d", i)
				agg.Register(name, staticChecker(name, Healthy("ok")))
			}
			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = agg.Run(ctx)
			}
		})
	}
}

func BenchmarkCacheChecker_Check(b *testing.B) {
	c := NewCacheChecker(stubCache(cache.Stats{Size: 10, Capacity: 100}), CacheCheckerConfig{})
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Check(ctx)
	}
}

func BenchmarkDetailedHandler(b *testing.B) {
	agg := aggregatorWith(Healthy("ok"))
	h := DetailedHandler(agg)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h(httptest.NewRecorder(), req)
	}
}
