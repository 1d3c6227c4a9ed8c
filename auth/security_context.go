package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/agentguard/token"
)

// SecurityContext is the identity attached to a request: a signed token and
// the claims it resolves to.
//
// A SecurityContext is immutable. Getters return copies, and every method is
// safe on a nil receiver.
type SecurityContext struct {
	tok     string
	payload token.Payload
}

// FromToken wraps a raw token without decoding it. The claim getters return
// empty values until the token is verified; use Validator.Authenticate for
// the claims.
func FromToken(tok string) *SecurityContext {
	return &SecurityContext{tok: tok, payload: token.NewPayload("", nil, nil, "", "")}
}

// verifiedContext pairs a token with the payload it was decoded into.
func verifiedContext(tok string, p token.Payload) *SecurityContext {
	return &SecurityContext{tok: tok, payload: p.Clone()}
}

// Token returns the signed token.
func (sc *SecurityContext) Token() string {
	if sc == nil {
		return ""
	}
	return sc.tok
}

// UserID returns the user claim.
func (sc *SecurityContext) UserID() string {
	if sc == nil {
		return ""
	}
	return sc.payload.UserID
}

// Roles returns a copy of the role names.
func (sc *SecurityContext) Roles() []string {
	if sc == nil {
		return []string{}
	}
	return append([]string{}, sc.payload.Roles...)
}

// Permissions returns a copy of the permission names.
func (sc *SecurityContext) Permissions() []string {
	if sc == nil {
		return []string{}
	}
	return append([]string{}, sc.payload.Permissions...)
}

// ServiceID returns the service identifier claim.
func (sc *SecurityContext) ServiceID() string {
	if sc == nil {
		return ""
	}
	return sc.payload.ServiceID
}

// ServiceType returns the service type claim.
func (sc *SecurityContext) ServiceType() string {
	if sc == nil {
		return ""
	}
	return sc.payload.ServiceType
}

// Payload returns a copy of the resolved claims.
func (sc *SecurityContext) Payload() token.Payload {
	if sc == nil {
		return token.NewPayload("", nil, nil, "", "")
	}
	return sc.payload.Clone()
}

// HasRole reports whether the context carries role, ignoring case.
func (sc *SecurityContext) HasRole(role string) bool {
	return sc != nil && containsFold(sc.payload.Roles, role)
}

// HasPermission reports whether the context carries perm, ignoring case.
func (sc *SecurityContext) HasPermission(perm string) bool {
	return sc != nil && containsFold(sc.payload.Permissions, perm)
}

// String describes the context with the token redacted.
func (sc *SecurityContext) String() string {
	if sc == nil {
		return "SecurityContext<nil>"
	}
	return fmt.Sprintf("SecurityContext{userId=%q roles=%v permissions=%v serviceId=%q serviceType=%q token=[REDACTED]}",
		sc.payload.UserID, sc.payload.Roles, sc.payload.Permissions, sc.payload.ServiceID, sc.payload.ServiceType)
}

type fieldSet uint8

const (
	setUserID fieldSet = 1 << iota
	setRoles
	setPermissions
	setServiceID
	setServiceType
)

// Builder assembles a SecurityContext.
//
// Fields set on the builder take precedence, even when set to an empty
// value. When a token is supplied, fields left unset are filled from its
// decoded claims. Build always signs a fresh token from the final fields, so
// a context's token and claims never disagree.
type Builder struct {
	codec *token.Codec
	tok   string
	p     token.Payload
	set   fieldSet
}

// NewBuilder creates a Builder that decodes and signs with codec.
// A nil codec resolves its secret from token.DefaultRefs.
func NewBuilder(codec *token.Codec) *Builder {
	if codec == nil {
		codec = token.NewCodec(nil)
	}
	return &Builder{codec: codec}
}

// UserID sets the user claim.
func (b *Builder) UserID(id string) *Builder {
	b.p.UserID = id
	b.set |= setUserID
	return b
}

// Roles sets the roles.
func (b *Builder) Roles(rs ...Role) *Builder {
	return b.RoleNames(RoleNames(rs...)...)
}

// RoleNames sets the roles by name. Names outside the role vocabulary are
// dropped.
func (b *Builder) RoleNames(names ...string) *Builder {
	b.p.Roles = knownRoles(names)
	b.set |= setRoles
	return b
}

// Permissions sets the permissions.
func (b *Builder) Permissions(ps ...Permission) *Builder {
	return b.PermissionNames(PermissionNames(ps...)...)
}

// PermissionNames sets the permissions by name. Names outside the
// permission vocabulary are dropped.
func (b *Builder) PermissionNames(names ...string) *Builder {
	b.p.Permissions = knownPermissions(names)
	b.set |= setPermissions
	return b
}

// ServiceID sets the service identifier.
func (b *Builder) ServiceID(id string) *Builder {
	b.p.ServiceID = id
	b.set |= setServiceID
	return b
}

// ServiceType sets the service type.
func (b *Builder) ServiceType(typ string) *Builder {
	b.p.ServiceType = typ
	b.set |= setServiceType
	return b
}

// Token supplies a signed token to back-fill unset fields from. A blank
// token is ignored.
func (b *Builder) Token(tok string) *Builder {
	b.tok = tok
	return b
}

// Build resolves the fields and signs the canonical token.
//
// It fails when the supplied token does not decode or no signing secret
// is configured. The error wraps both the auth and token sentinels.
func (b *Builder) Build(ctx context.Context) (*SecurityContext, error) {
	p := b.p.Clone()

	if strings.TrimSpace(b.tok) != "" {
		decoded, err := b.codec.Decode(ctx, b.tok)
		if err != nil {
			return nil, fmt.Errorf("auth: build security context: %w", codecError(err))
		}
		b.backfill(&p, decoded)
	}

	final := token.NewPayload(p.UserID, p.Roles, p.Permissions, p.ServiceID, p.ServiceType)
	tok, err := b.codec.Encode(ctx, final)
	if err != nil {
		return nil, fmt.Errorf("auth: build security context: %w", codecError(err))
	}
	return &SecurityContext{tok: tok, payload: final}, nil
}

func (b *Builder) backfill(p *token.Payload, decoded token.Payload) {
	if b.set&setUserID == 0 {
		p.UserID = decoded.UserID
	}
	if b.set&setRoles == 0 {
		p.Roles = knownRoles(decoded.Roles)
	}
	if b.set&setPermissions == 0 {
		p.Permissions = knownPermissions(decoded.Permissions)
	}
	if b.set&setServiceID == 0 {
		p.ServiceID = decoded.ServiceID
	}
	if b.set&setServiceType == 0 {
		p.ServiceType = decoded.ServiceType
	}
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
