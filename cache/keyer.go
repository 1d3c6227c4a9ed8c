package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer maps a raw token to the key it is cached under.
//
// Contract:
// - Determinism: the same token must always produce the same key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(raw string) string
}

// RawKeyer caches under the raw token string.
type RawKeyer struct{}

// Key returns raw unchanged.
func (RawKeyer) Key(raw string) string { return raw }

// DigestKeyer caches under the hex SHA-256 of the token, so each key costs a
// fixed 64 bytes regardless of token length.
type DigestKeyer struct{}

// Key returns the hex SHA-256 digest of raw.
func (DigestKeyer) Key(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// KeyerFor returns DigestKeyer when digest is true and RawKeyer otherwise.
func KeyerFor(digest bool) Keyer {
	if digest {
		return DigestKeyer{}
	}
	return RawKeyer{}
}

var (
	_ Keyer = RawKeyer{}
	_ Keyer = DigestKeyer{}
)
