package auth

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/agentguard/token"
)

// Sentinel errors for authentication and authorization.
var (
	// Authentication errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrIncompleteClaims   = errors.New("auth: incomplete claims")
	ErrConfiguration      = errors.New("auth: signing secret not configured")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")
)

// ClaimError reports a correctly signed token that lacks a required claim.
type ClaimError struct {
	// Claim is the wire name of the first missing claim.
	Claim string
}

// Error returns the error message.
func (e *ClaimError) Error() string {
	return "auth: incomplete claims: missing " + e.Claim
}

// Is reports whether this error matches the target.
func (e *ClaimError) Is(target error) bool {
	return target == ErrIncompleteClaims
}

// codecError maps a token codec error onto the auth taxonomy while keeping
// the codec error in the chain.
func codecError(err error) error {
	switch token.Classify(err) {
	case token.StatusOK:
		return nil
	case token.StatusConfiguration:
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	case token.StatusIntegrity:
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}

// Reason labels used in metrics, logs and audit details.
const (
	ReasonOK                 = "ok"
	ReasonMissingCredentials = "missing_credentials"
	ReasonMalformed          = "malformed"
	ReasonInvalidSignature   = "invalid_signature"
	ReasonIncompleteClaims   = "incomplete_claims"
	ReasonConfiguration      = "configuration"
	ReasonForbidden          = "forbidden"
	ReasonError              = "error"
)

// Reason returns a short label for err. It never includes credential
// material and is safe to record in audit entries.
func Reason(err error) string {
	switch {
	case err == nil:
		return ReasonOK
	case errors.Is(err, ErrConfiguration):
		return ReasonConfiguration
	case errors.Is(err, ErrMissingCredentials):
		return ReasonMissingCredentials
	case errors.Is(err, ErrIncompleteClaims):
		return ReasonIncompleteClaims
	case errors.Is(err, ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, ErrInvalidCredentials):
		return ReasonInvalidSignature
	case errors.Is(err, ErrForbidden):
		return ReasonForbidden
	default:
		return ReasonError
	}
}
