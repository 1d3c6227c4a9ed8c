package auth

import (
	"context"

	"github.com/jonwraymond/agentguard/token"
)

// Authenticator verifies a security context and returns its claims.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: failures wrap one of ErrMissingCredentials, ErrTokenMalformed,
//     ErrInvalidCredentials, ErrIncompleteClaims or ErrConfiguration.
type Authenticator interface {
	Authenticate(ctx context.Context, sc *SecurityContext) (token.Payload, error)
}

// Request is an inbound request presented for admission.
type Request struct {
	// Security is the caller's identity. Nil means the request carries none.
	Security *SecurityContext

	// Domain names the agent domain the request targets.
	Domain string

	// Resource is the target resource (e.g. "/agents/pricing").
	Resource string

	// Action is the requested action (e.g. "GET", "execute").
	Action string

	// Metadata contains additional request attributes.
	Metadata map[string]string
}

func (r *Request) domain() string {
	if r == nil {
		return ""
	}
	return r.Domain
}

func (r *Request) resource() string {
	if r == nil {
		return ""
	}
	return r.Resource
}

func (r *Request) action() string {
	if r == nil {
		return ""
	}
	return r.Action
}
