package audit

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	e := NewEntry("billing", "u1", ActionAccessGranted, true)

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "UTC", e.Timestamp.Location().String())
	assert.Equal(t, "billing", e.Domain)
	assert.Equal(t, "u1", e.UserID)
	assert.True(t, e.Success)

	other := NewEntry("billing", "u1", ActionAccessGranted, true)
	assert.NotEqual(t, e.ID, other.ID)
}

func TestMemorySink_RecordAndQuery(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySink()

	require.NoError(t, m.Record(ctx, NewEntry("d", "alice", ActionAccessGranted, true)))
	require.NoError(t, m.Record(ctx, NewEntry("d", "bob", ActionAuthenticationFailed, false)))
	require.NoError(t, m.Record(ctx, NewEntry("d", "alice", ActionAuthorizationFailed, false)))

	assert.Equal(t, 3, m.Len())
	assert.Len(t, m.ForUser("alice"), 2)
	assert.Len(t, m.ForUser("bob"), 1)
	assert.Empty(t, m.ForUser("carol"))

	entries := m.Entries()
	entries[0].UserID = "mutated"
	assert.Equal(t, "alice", m.Entries()[0].UserID, "Entries must return a copy")

	m.Clear()
	assert.Zero(t, m.Len())
	assert.Empty(t, m.Entries())
}

func TestMemorySink_Concurrent(t *testing.T) {
	m := NewMemorySink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Record(context.Background(), NewEntry("d", "u", ActionAccessGranted, true))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())
}

func TestBuildReport(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
		want    Report
	}{
		{
			name: "empty",
			want: Report{
				AuthenticationCompliance: 100,
				AuthorizationCompliance:  100,
				OverallCompliance:        100,
			},
		},
		{
			name:    "mixed",
			actions: []Action{ActionAccessGranted, ActionAccessGranted, ActionAuthorizationFailed, ActionAuthenticationFailed},
			want: Report{
				Total:                    4,
				AuthenticationAttempts:   4,
				AuthenticationFailures:   1,
				AuthorizationAttempts:    3,
				AuthorizationFailures:    1,
				AuthenticationCompliance: 75,
				AuthorizationCompliance:  float64(2) * 100 / 3,
				OverallCompliance:        50,
			},
		},
		{
			name:    "all rejected at authentication",
			actions: []Action{ActionAuthenticationFailed, ActionAuthenticationFailed},
			want: Report{
				Total:                    2,
				AuthenticationAttempts:   2,
				AuthenticationFailures:   2,
				AuthenticationCompliance: 0,
				AuthorizationCompliance:  100,
				OverallCompliance:        0,
			},
		},
		{
			name:    "foreign action counts toward total only",
			actions: []Action{"REQUEST_PROCESSED"},
			want: Report{
				Total:                    1,
				AuthenticationCompliance: 100,
				AuthorizationCompliance:  100,
				OverallCompliance:        100,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemorySink()
			for _, a := range tt.actions {
				_ = m.Record(context.Background(), NewEntry("d", "u", a, a == ActionAccessGranted))
			}
			assert.Equal(t, tt.want, m.Report())
		})
	}
}
