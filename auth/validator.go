package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/agentguard/cache"
	"github.com/jonwraymond/agentguard/observe"
	"github.com/jonwraymond/agentguard/token"
)

// UnknownUser is returned by ExtractUserID when no user can be determined.
const UnknownUser = "unknown"

// Option configures a Validator.
type Option func(*Validator)

// WithCachePolicy sets the decode cache policy. The default is
// cache.DefaultPolicy.
func WithCachePolicy(p cache.Policy) Option {
	return func(v *Validator) { v.policy = p }
}

// WithCacheKeyer sets how tokens are turned into cache keys.
func WithCacheKeyer(k cache.Keyer) Option {
	return func(v *Validator) { v.keyer = k }
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// WithInstrumenter sets the tracing and metrics wrapper.
func WithInstrumenter(i *observe.Instrumenter) Option {
	return func(v *Validator) { v.inst = i }
}

// WithAnonymousAccess controls whether a request that carries no security
// context is authorized. It defaults to true.
func WithAnonymousAccess(allow bool) Option {
	return func(v *Validator) { v.allowAnonymous = allow }
}

// Validator authenticates security contexts and authorizes requests.
//
// Decoded tokens are cached by their raw string. Only successful decodes are
// cached, so a failure never hides a later success for the same token.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: the bool and string methods never return errors or panic.
type Validator struct {
	codec          *token.Codec
	decoded        *cache.Loader[token.Payload]
	policy         cache.Policy
	keyer          cache.Keyer
	logger         observe.Logger
	inst           *observe.Instrumenter
	allowAnonymous bool
}

// NewValidator creates a Validator that decodes with codec. A nil codec
// resolves its secret from token.DefaultRefs.
func NewValidator(codec *token.Codec, opts ...Option) (*Validator, error) {
	if codec == nil {
		codec = token.NewCodec(nil)
	}
	v := &Validator{
		codec:          codec,
		policy:         cache.DefaultPolicy(),
		allowAnonymous: true,
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.inst == nil {
		v.inst = observe.NewInstrumenter(nil, nil, v.logger, nil)
	}
	v.inst = v.inst.WithOutcome(Reason)
	if v.logger == nil {
		v.logger = v.inst.Logger()
	}

	loader, err := cache.NewLoader[token.Payload](v.policy, v.keyer)
	if err != nil {
		return nil, fmt.Errorf("auth: decode cache: %w", err)
	}
	v.decoded = loader
	return v, nil
}

// Codec returns the codec the validator decodes with.
func (v *Validator) Codec() *token.Codec { return v.codec }

// AllowsAnonymous reports whether requests without a security context are
// authorized.
func (v *Validator) AllowsAnonymous() bool { return v.allowAnonymous }

// Authenticate verifies sc and returns its claims.
//
// It fails when sc is nil or has a blank token, when the token does not
// decode, or when any of the five claims is absent.
func (v *Validator) Authenticate(ctx context.Context, sc *SecurityContext) (token.Payload, error) {
	var p token.Payload
	err := v.inst.Run(ctx, observe.Op{Name: "authenticate"}, func(ctx context.Context) error {
		if sc == nil {
			return fmt.Errorf("%w: no security context", ErrMissingCredentials)
		}
		decoded, err := v.decode(ctx, sc.Token())
		if err != nil {
			return err
		}
		if claim := decoded.MissingClaim(); claim != "" {
			return &ClaimError{Claim: claim}
		}
		p = decoded.Clone()
		return nil
	})
	return p, err
}

// ValidateSecurityContext reports whether sc authenticates.
func (v *Validator) ValidateSecurityContext(ctx context.Context, sc *SecurityContext) bool {
	ok := false
	v.safely(ctx, "validate_security_context", func() {
		_, err := v.Authenticate(ctx, sc)
		ok = err == nil
	})
	return ok
}

// Authorize checks req against the requirements declared by res.
//
// A request without a security context is allowed when anonymous access is
// enabled and otherwise fails with ErrMissingCredentials. A nil resource or
// one without requirements allows any request. Otherwise the caller needs
// one matching role or one matching permission; a mismatch returns
// *AuthzError.
func (v *Validator) Authorize(ctx context.Context, req *Request, res Resource) error {
	if req == nil || req.Security == nil {
		return v.authorizeAnonymous(ctx, req)
	}

	op := observe.Op{Name: "authorize", Domain: req.Domain}
	return v.inst.Run(ctx, op, func(ctx context.Context) error {
		if requiresNothing(res) {
			return nil
		}
		p, err := v.decode(ctx, req.Security.Token())
		if err != nil {
			return err
		}
		if satisfied(res, p.Roles, p.Permissions) {
			return nil
		}
		return &AuthzError{
			Subject:  p.UserID,
			Resource: req.Resource,
			Action:   req.Action,
			Reason:   "no matching role or permission",
		}
	})
}

func (v *Validator) authorizeAnonymous(ctx context.Context, req *Request) error {
	op := observe.Op{Name: "authorize_anonymous", Domain: req.domain()}
	return v.inst.Run(ctx, op, func(ctx context.Context) error {
		if !v.allowAnonymous {
			return fmt.Errorf("%w: no security context", ErrMissingCredentials)
		}
		v.logger.Warn(ctx, "authorized request without security context",
			observe.F("domain", req.domain()),
			observe.F("resource", req.resource()),
			observe.F("action", req.action()))
		return nil
	})
}

// ValidateAuthorization reports whether Authorize permits req.
func (v *Validator) ValidateAuthorization(ctx context.Context, req *Request, res Resource) bool {
	ok := false
	v.safely(ctx, "validate_authorization", func() {
		ok = v.Authorize(ctx, req, res) == nil
	})
	return ok
}

// ExtractUserID returns the verified user claim of req, or UnknownUser.
func (v *Validator) ExtractUserID(ctx context.Context, req *Request) string {
	id := UnknownUser
	v.safely(ctx, "extract_user_id", func() {
		if req == nil || req.Security == nil {
			return
		}
		p, err := v.decode(ctx, req.Security.Token())
		if err != nil || strings.TrimSpace(p.UserID) == "" {
			return
		}
		id = p.UserID
	})
	return id
}

// HasRole reports whether sc's verified token carries role, ignoring case.
func (v *Validator) HasRole(ctx context.Context, sc *SecurityContext, role string) bool {
	ok := false
	v.safely(ctx, "has_role", func() {
		p, err := v.decode(ctx, sc.Token())
		ok = err == nil && containsFold(p.Roles, role)
	})
	return ok
}

// HasPermission reports whether sc's verified token carries perm, ignoring
// case.
func (v *Validator) HasPermission(ctx context.Context, sc *SecurityContext, perm string) bool {
	ok := false
	v.safely(ctx, "has_permission", func() {
		p, err := v.decode(ctx, sc.Token())
		ok = err == nil && containsFold(p.Permissions, perm)
	})
	return ok
}

// ServiceID authenticates sc and returns its service identifier.
func (v *Validator) ServiceID(ctx context.Context, sc *SecurityContext) (string, error) {
	p, err := v.Authenticate(ctx, sc)
	if err != nil {
		return "", err
	}
	return p.ServiceID, nil
}

// ClearCache drops every cached decode.
func (v *Validator) ClearCache() {
	v.decoded.Purge()
}

// CacheStats returns decode cache statistics.
func (v *Validator) CacheStats() cache.Stats {
	return v.decoded.Stats()
}

// decode returns the cached payload for tok, decoding on a miss. The
// returned payload shares memory with the cache and must not be modified.
func (v *Validator) decode(ctx context.Context, tok string) (token.Payload, error) {
	if strings.TrimSpace(tok) == "" {
		return token.Payload{}, fmt.Errorf("%w: empty token", ErrMissingCredentials)
	}
	p, hit, err := v.decoded.GetOrLoad(tok, func() (token.Payload, error) {
		return v.codec.Decode(ctx, tok)
	})
	v.inst.CacheLookup(ctx, hit)
	if err != nil {
		return token.Payload{}, codecError(err)
	}
	return p, nil
}

func (v *Validator) safely(ctx context.Context, op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error(ctx, "recovered panic", observe.F("op", op), observe.F("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}

var (
	_ Authenticator = (*Validator)(nil)
	_ Authorizer    = (*Validator)(nil)
)
