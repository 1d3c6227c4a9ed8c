package cache

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLoader(t *testing.T, p Policy, k Keyer) *Loader[string] {
	t.Helper()
	l, err := NewLoader[string](p, k)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	return l
}

func TestLoader_CachesSuccess(t *testing.T) {
	l := newTestLoader(t, DefaultPolicy(), nil)
	calls := 0
	load := func() (string, error) {
		calls++
		return "payload", nil
	}

	v, hit, err := l.GetOrLoad("tok", load)
	if err != nil || hit || v != "payload" {
		t.Fatalf("first GetOrLoad() = %q, %v, %v", v, hit, err)
	}
	v, hit, err = l.GetOrLoad("tok", load)
	if err != nil || !hit || v != "payload" {
		t.Fatalf("second GetOrLoad() = %q, %v, %v", v, hit, err)
	}
	if calls != 1 {
		t.Fatalf("load called %d times, want 1", calls)
	}
}

func TestLoader_ErrorsNotCached(t *testing.T) {
	l := newTestLoader(t, DefaultPolicy(), nil)
	fail := errors.New("bad signature")
	calls := 0

	for i := 0; i < 3; i++ {
		_, hit, err := l.GetOrLoad("tok", func() (string, error) {
			calls++
			return "", fail
		})
		if !errors.Is(err, fail) || hit {
			t.Fatalf("GetOrLoad() = %v, %v; want error, miss", hit, err)
		}
	}
	if calls != 3 {
		t.Fatalf("load called %d times, want 3", calls)
	}
	if l.Cached("tok") || l.Len() != 0 {
		t.Fatal("failed load must not populate the cache")
	}

	v, _, err := l.GetOrLoad("tok", func() (string, error) { return "recovered", nil })
	if err != nil || v != "recovered" {
		t.Fatalf("GetOrLoad() after failures = %q, %v", v, err)
	}
}

func TestLoader_InvalidKeyBypassesCache(t *testing.T) {
	l := newTestLoader(t, DefaultPolicy(), nil)
	calls := 0
	load := func() (string, error) {
		calls++
		return "v", nil
	}

	for _, key := range []string{"", strings.Repeat("x", MaxKeyLength+1)} {
		l.GetOrLoad(key, load)
		l.GetOrLoad(key, load)
	}
	if calls != 4 {
		t.Fatalf("load called %d times, want 4", calls)
	}
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
}

func TestLoader_DigestKeyer(t *testing.T) {
	l := newTestLoader(t, DefaultPolicy(), DigestKeyer{})
	l.GetOrLoad("a.b.c", func() (string, error) { return "v", nil })

	if !l.Cached("a.b.c") {
		t.Fatal("Cached() should find the token through the digest key")
	}
	if !l.Forget("a.b.c") {
		t.Fatal("Forget() should remove the entry")
	}
	if l.Cached("a.b.c") {
		t.Fatal("entry should be gone after Forget()")
	}
}

func TestLoader_SingleflightCollapsesConcurrentMisses(t *testing.T) {
	l := newTestLoader(t, DefaultPolicy(), nil)
	var calls atomic.Int32
	release := make(chan struct{})

	load := func() (string, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, _, err := l.GetOrLoad("tok", load); err != nil || v != "v" {
				t.Errorf("GetOrLoad() = %q, %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 8 {
		t.Fatalf("load called %d times", n)
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
}

func TestLoader_PurgeAndStats(t *testing.T) {
	l := newTestLoader(t, Policy{MaxEntries: 2}, nil)
	for _, k := range []string{"a", "b", "c"} {
		l.GetOrLoad(k, func() (string, error) { return k, nil })
	}
	s := l.Stats()
	if s.Size != 2 || s.Evictions != 1 || s.Misses != 3 {
		t.Fatalf("Stats() = %+v", s)
	}

	l.Purge()
	if l.Len() != 0 {
		t.Fatalf("Len() after Purge = %d", l.Len())
	}
}
