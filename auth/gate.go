package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/agentguard/audit"
	"github.com/jonwraymond/agentguard/observe"
)

// Outcome is the terminal state of an admission check.
type Outcome int

const (
	Accepted Outcome = iota
	RejectedAuthFailed
	RejectedAuthzFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedAuthFailed:
		return "rejected_auth_failed"
	case RejectedAuthzFailed:
		return "rejected_authz_failed"
	default:
		return "unknown"
	}
}

// Decision is the result of Gate.Check.
type Decision struct {
	Outcome Outcome

	// UserID is the verified caller, or UnknownUser.
	UserID string

	// Reason is a short label for Err, or ReasonOK.
	Reason string

	// Err is the rejection cause. Nil when accepted.
	Err error

	// Security is the verified context for an accepted request that carried
	// one. Its claims are exactly those decoded from the token.
	Security *SecurityContext
}

// Allowed reports whether the request was accepted.
func (d Decision) Allowed() bool { return d.Outcome == Accepted }

// Gate admits or rejects requests and records every decision.
//
// Check runs, in order: authentication of the security context if one is
// present, then authorization against the resource. A request without a
// security context skips authentication and is subject to the validator's
// anonymous access setting.
type Gate struct {
	validator *Validator
	sink      audit.Sink
	logger    observe.Logger
}

// NewGate creates a Gate. A nil sink discards audit entries.
func NewGate(v *Validator, sink audit.Sink) *Gate {
	if sink == nil {
		sink = audit.Discard
	}
	return &Gate{validator: v, sink: sink, logger: v.logger}
}

// Validator returns the gate's validator.
func (g *Gate) Validator() *Validator { return g.validator }

// Check decides whether req may access res.
func (g *Gate) Check(ctx context.Context, req *Request, res Resource) Decision {
	d := Decision{UserID: g.validator.ExtractUserID(ctx, req), Reason: ReasonOK}

	if req != nil && req.Security != nil {
		p, err := g.validator.Authenticate(ctx, req.Security)
		if err != nil {
			return g.reject(ctx, req, d, RejectedAuthFailed, err)
		}
		d.Security = verifiedContext(req.Security.Token(), p)
	}

	if err := g.validator.Authorize(ctx, req, res); err != nil {
		outcome := RejectedAuthFailed
		if errors.Is(err, ErrForbidden) {
			outcome = RejectedAuthzFailed
		}
		d.Security = nil
		return g.reject(ctx, req, d, outcome, err)
	}

	d.Outcome = Accepted
	g.record(ctx, req, d, audit.ActionAccessGranted)
	return d
}

// CheckAuthenticated is Check for resources that must not be reached
// anonymously. A request without a security context is rejected with
// ErrMissingCredentials whenever res declares requirements, regardless of
// the validator's anonymous access setting.
func (g *Gate) CheckAuthenticated(ctx context.Context, req *Request, res Resource) Decision {
	if (req == nil || req.Security == nil) && !requiresNothing(res) {
		d := Decision{UserID: UnknownUser}
		return g.reject(ctx, req, d, RejectedAuthFailed,
			fmt.Errorf("%w: resource requires a security context", ErrMissingCredentials))
	}
	return g.Check(ctx, req, res)
}

func (g *Gate) reject(ctx context.Context, req *Request, d Decision, o Outcome, err error) Decision {
	d.Outcome = o
	d.Err = err
	d.Reason = Reason(err)

	action := audit.ActionAuthenticationFailed
	if o == RejectedAuthzFailed {
		action = audit.ActionAuthorizationFailed
	}
	g.record(ctx, req, d, action)
	return d
}

func (g *Gate) record(ctx context.Context, req *Request, d Decision, action audit.Action) {
	e := audit.NewEntry(req.domain(), d.UserID, action, d.Allowed())
	e.Resource = req.resource()
	e.Details = d.Reason
	if err := g.sink.Record(ctx, e); err != nil {
		g.logger.Warn(ctx, "audit record failed",
			observe.F("action", string(action)),
			observe.F("user_id", d.UserID),
			observe.F("error", err))
	}
}
