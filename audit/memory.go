package audit

import (
	"context"
	"sync"
)

// MemorySink keeps the audit trail in memory.
type MemorySink struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemorySink creates an empty trail.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends e.
func (m *MemorySink) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return nil
}

// Entries returns a copy of the trail in recording order.
func (m *MemorySink) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.entries...)
}

// ForUser returns the entries recorded for userID.
func (m *MemorySink) ForUser(userID string) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of recorded entries.
func (m *MemorySink) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear discards the trail.
func (m *MemorySink) Clear() {
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()
}

// Report summarizes the trail.
func (m *MemorySink) Report() Report {
	return BuildReport(m.Entries())
}
