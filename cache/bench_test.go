package cache

import (
	"fmt"
	"strings"
	"testing"
)

func benchCache(b *testing.B) *Bounded[string, int] {
	b.Helper()
	c, err := NewBounded[string, int](DefaultPolicy())
	if err != nil {
		b.Fatal(err)
	}
	return c
}

// BenchmarkBounded_Get_Hit measures cache hit performance.
func BenchmarkBounded_Get_Hit(b *testing.B) {
	c := benchCache(b)
	c.Add("key", 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get("key")
	}
}

// BenchmarkBounded_Get_Miss measures cache miss performance.
func BenchmarkBounded_Get_Miss(b *testing.B) {
	c := benchCache(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get("missing")
	}
}

// BenchmarkBounded_Add_Evicting measures inserts at capacity.
func BenchmarkBounded_Add_Evicting(b *testing.B) {
	c := benchCache(b)
	for i := 0; i < DefaultMaxEntries; i++ {
		c.Add(fmt.Sprintf("seed-%d", i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(fmt.Sprintf("key-%d", i), i)
	}
}

// BenchmarkBounded_Concurrent_ReadHeavy measures a read-heavy workload.
func BenchmarkBounded_Concurrent_ReadHeavy(b *testing.B) {
	c := benchCache(b)
	for i := 0; i < 100; i++ {
		c.Add(fmt.Sprintf("key-%d", i), i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key-%d", i%100)
			if i%4 == 0 {
				c.Add(key, i)
			} else {
				_, _ = c.Get(key)
			}
			i++
		}
	})
}

// BenchmarkDigestKeyer_Key measures hashing a typical token.
func BenchmarkDigestKeyer_Key(b *testing.B) {
	tok := strings.Repeat("a", 120) + "." + strings.Repeat("b", 200) + "." + strings.Repeat("c", 43)
	k := DigestKeyer{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = k.Key(tok)
	}
}

// BenchmarkLoader_GetOrLoad_Hit measures the cached path.
func BenchmarkLoader_GetOrLoad_Hit(b *testing.B) {
	l, err := NewLoader[int](DefaultPolicy(), nil)
	if err != nil {
		b.Fatal(err)
	}
	load := func() (int, error) { return 1, nil }
	_, _, _ = l.GetOrLoad("tok", load)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = l.GetOrLoad("tok", load)
	}
}

// BenchmarkValidateKey measures key validation.
func BenchmarkValidateKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ValidateKey("header.payload.signature")
	}
}
