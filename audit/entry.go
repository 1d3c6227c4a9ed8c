package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names the outcome being recorded.
type Action string

// Admission outcomes.
const (
	ActionAuthenticationFailed Action = "AUTHENTICATION_FAILED"
	ActionAuthorizationFailed  Action = "AUTHORIZATION_FAILED"
	ActionAccessGranted        Action = "ACCESS_GRANTED"
)

// Entry is a single audit record.
//
// Details carries a short machine-readable reason. It never contains
// credentials or signing material.
type Entry struct {
	ID        uuid.UUID
	Timestamp time.Time
	Domain    string
	UserID    string
	Action    Action
	Success   bool
	Resource  string
	Details   string
}

// NewEntry creates an entry stamped with a fresh ID and the current UTC time.
func NewEntry(domain, userID string, action Action, success bool) Entry {
	return Entry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Domain:    domain,
		UserID:    userID,
		Action:    action,
		Success:   success,
	}
}
