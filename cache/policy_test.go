package cache

import (
	"errors"
	"testing"
	"time"
)

func TestPolicy_DefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.MaxEntries != 1000 {
		t.Errorf("DefaultPolicy().MaxEntries = %d, want 1000", p.MaxEntries)
	}
	if p.Eviction != EvictLRU {
		t.Errorf("DefaultPolicy().Eviction = %q, want lru", p.Eviction)
	}
	if p.TTL != 0 {
		t.Errorf("DefaultPolicy().TTL = %v, want 0", p.TTL)
	}
	if !p.ShouldCache() {
		t.Error("DefaultPolicy().ShouldCache() = false, want true")
	}
}

func TestPolicy_NoCachePolicy(t *testing.T) {
	if NoCachePolicy().ShouldCache() {
		t.Error("NoCachePolicy().ShouldCache() = true, want false")
	}
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{name: "default", policy: DefaultPolicy()},
		{name: "disabled", policy: NoCachePolicy()},
		{name: "fifo with ttl", policy: Policy{MaxEntries: 10, Eviction: EvictFIFO, TTL: time.Minute}},
		{name: "empty eviction", policy: Policy{MaxEntries: 10}},
		{name: "negative size", policy: Policy{MaxEntries: -1}, wantErr: true},
		{name: "negative ttl", policy: Policy{MaxEntries: 1, TTL: -time.Second}, wantErr: true},
		{name: "unknown eviction", policy: Policy{MaxEntries: 1, Eviction: "random"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPolicy) {
					t.Fatalf("Validate() error = %v, want ErrInvalidPolicy", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}

func TestParseEviction(t *testing.T) {
	tests := map[string]Eviction{
		"":      EvictLRU,
		"lru":   EvictLRU,
		" LRU ": EvictLRU,
		"fifo":  EvictFIFO,
		"FIFO":  EvictFIFO,
	}
	for in, want := range tests {
		got, err := ParseEviction(in)
		if err != nil || got != want {
			t.Errorf("ParseEviction(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}
