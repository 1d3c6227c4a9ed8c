package token

import (
	"slices"
	"strings"
)

// Payload is the decoded claim set carried by a token.
//
// Scalar claims use the empty string for "absent". Roles and Permissions are
// never nil once constructed through NewPayload or Decode.
type Payload struct {
	UserID      string   `json:"userId"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	ServiceID   string   `json:"serviceId"`
	ServiceType string   `json:"serviceType"`
}

// NewPayload builds a normalized payload. List entries are trimmed and blank
// entries dropped; nil lists become empty.
func NewPayload(userID string, roles, permissions []string, serviceID, serviceType string) Payload {
	return Payload{
		UserID:      strings.TrimSpace(userID),
		Roles:       cleanList(roles),
		Permissions: cleanList(permissions),
		ServiceID:   strings.TrimSpace(serviceID),
		ServiceType: strings.TrimSpace(serviceType),
	}
}

// Normalize returns a copy of p in the form NewPayload produces.
func (p Payload) Normalize() Payload {
	return NewPayload(p.UserID, p.Roles, p.Permissions, p.ServiceID, p.ServiceType)
}

// Clone returns a deep copy of p.
func (p Payload) Clone() Payload {
	p.Roles = slices.Clone(p.Roles)
	p.Permissions = slices.Clone(p.Permissions)
	if p.Roles == nil {
		p.Roles = []string{}
	}
	if p.Permissions == nil {
		p.Permissions = []string{}
	}
	return p
}

// Equal reports whether p and other carry the same claims in the same order.
func (p Payload) Equal(other Payload) bool {
	return p.UserID == other.UserID &&
		p.ServiceID == other.ServiceID &&
		p.ServiceType == other.ServiceType &&
		slices.Equal(p.Roles, other.Roles) &&
		slices.Equal(p.Permissions, other.Permissions)
}

// MissingClaim returns the wire name of the first absent or empty claim, or
// "" when all five claims are present.
func (p Payload) MissingClaim() string {
	switch {
	case strings.TrimSpace(p.UserID) == "":
		return KeyUserID
	case len(p.Roles) == 0:
		return KeyRoles
	case len(p.Permissions) == 0:
		return KeyPermissions
	case strings.TrimSpace(p.ServiceID) == "":
		return KeyServiceID
	case strings.TrimSpace(p.ServiceType) == "":
		return KeyServiceType
	default:
		return ""
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
