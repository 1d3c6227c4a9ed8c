package auth

import (
	"context"
	"fmt"
)

// Authorizer decides whether a request may access a resource.
type Authorizer interface {
	// Authorize returns nil if permitted, or an error (typically *AuthzError)
	// if denied.
	Authorize(ctx context.Context, req *Request, res Resource) error
}

// Resource declares the roles and permissions sufficient to access it.
// Holding any one listed role or any one listed permission grants access.
// A resource that lists neither is open to every authenticated caller.
type Resource interface {
	RequiredRoles() []string
	RequiredPermissions() []string
}

// Requirements is a Resource value.
type Requirements struct {
	Roles       []string `yaml:"roles" json:"roles"`
	Permissions []string `yaml:"permissions" json:"permissions"`
}

// RequireRoles returns requirements satisfied by any of rs.
func RequireRoles(rs ...Role) Requirements {
	return Requirements{Roles: RoleNames(rs...)}
}

// RequirePermissions returns requirements satisfied by any of ps.
func RequirePermissions(ps ...Permission) Requirements {
	return Requirements{Permissions: PermissionNames(ps...)}
}

// Or returns requirements satisfied by either r or other.
func (r Requirements) Or(other Requirements) Requirements {
	return Requirements{
		Roles:       append(append([]string{}, r.Roles...), other.Roles...),
		Permissions: append(append([]string{}, r.Permissions...), other.Permissions...),
	}
}

// RequiredRoles implements Resource.
func (r Requirements) RequiredRoles() []string { return r.Roles }

// RequiredPermissions implements Resource.
func (r Requirements) RequiredPermissions() []string { return r.Permissions }

// IsEmpty reports whether no role or permission is required.
func (r Requirements) IsEmpty() bool {
	return len(r.Roles) == 0 && len(r.Permissions) == 0
}

// satisfied applies the OR rule, ignoring case.
func satisfied(res Resource, roles, perms []string) bool {
	required := res.RequiredRoles()
	for _, want := range required {
		if containsFold(roles, want) {
			return true
		}
	}
	for _, want := range res.RequiredPermissions() {
		if containsFold(perms, want) {
			return true
		}
	}
	return false
}

func requiresNothing(res Resource) bool {
	return res == nil || (len(res.RequiredRoles()) == 0 && len(res.RequiredPermissions()) == 0)
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	// Subject is the user that was denied.
	Subject string

	// Resource is the resource that was denied access to.
	Resource string

	// Action is the action that was denied.
	Action string

	// Reason explains why access was denied.
	Reason string

	// Cause is the underlying error if any.
	Cause error
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q resource=%q action=%q reason=%q",
		e.Subject, e.Resource, e.Action, e.Reason)
}

// Unwrap returns the cause error for errors.Is/As support.
func (e *AuthzError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}
