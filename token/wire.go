package token

import (
	"net/url"
	"strings"
)

// Wire names of the payload claims, in canonical order.
const (
	KeyUserID      = "userId"
	KeyRoles       = "roles"
	KeyPermissions = "permissions"
	KeyServiceID   = "serviceId"
	KeyServiceType = "serviceType"
)

// Header is the fixed header segment before base64url encoding.
const Header = `{"alg":"HS256","typ":"JWT"}`

const listSep = ","

// marshalPayload renders p in canonical URL-form order.
func marshalPayload(p Payload) string {
	var b strings.Builder
	b.Grow(64)
	writePair(&b, KeyUserID, p.UserID)
	b.WriteByte('&')
	writePair(&b, KeyRoles, strings.Join(p.Roles, listSep))
	b.WriteByte('&')
	writePair(&b, KeyPermissions, strings.Join(p.Permissions, listSep))
	b.WriteByte('&')
	writePair(&b, KeyServiceID, p.ServiceID)
	b.WriteByte('&')
	writePair(&b, KeyServiceType, p.ServiceType)
	return b.String()
}

func writePair(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}

// unmarshalPayload parses URL-form claims. Pairs without '=', unknown keys and
// values that fail to unescape are skipped.
func unmarshalPayload(data string) Payload {
	var (
		userID, serviceID, serviceType string
		roles, permissions             string
	)
	for _, pair := range strings.Split(data, "&") {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		value, err := url.QueryUnescape(raw)
		if err != nil {
			continue
		}
		switch key {
		case KeyUserID:
			userID = value
		case KeyRoles:
			roles = value
		case KeyPermissions:
			permissions = value
		case KeyServiceID:
			serviceID = value
		case KeyServiceType:
			serviceType = value
		}
	}
	return NewPayload(userID, splitList(roles), splitList(permissions), serviceID, serviceType)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, listSep)
}
