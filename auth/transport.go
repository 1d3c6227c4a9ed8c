package auth

import (
	"net/http"
	"strings"
)

// DomainHeader carries the target agent domain of an HTTP request.
const DomainHeader = "X-Agent-Domain"

const bearerScheme = "bearer "

// BearerToken extracts the token from an "Authorization: Bearer" header.
// present reports whether an Authorization header was sent at all; a header
// with another scheme yields ("", true).
func BearerToken(r *http.Request) (tok string, present bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	if len(h) < len(bearerScheme) || !strings.EqualFold(h[:len(bearerScheme)], bearerScheme) {
		return "", true
	}
	return strings.TrimSpace(h[len(bearerScheme):]), true
}

// RequestFromHTTP builds a Request from r. The resource is the URL path and
// the action is the method. A request without an Authorization header has
// no security context.
func RequestFromHTTP(r *http.Request) *Request {
	req := &Request{
		Domain:   r.Header.Get(DomainHeader),
		Resource: r.URL.Path,
		Action:   r.Method,
	}
	if tok, ok := BearerToken(r); ok {
		req.Security = FromToken(tok)
	}
	return req
}

// RequireAccess is HTTP middleware that admits requests through g against
// res. Authentication failures get 401 and authorization failures 403.
// A request without credentials gets 401 whenever res declares requirements,
// even if the validator allows anonymous access. Accepted requests carry
// the verified SecurityContext in their context.
//
// Usage:
//
//	r := chi.NewRouter()
//	r.With(auth.RequireAccess(gate, auth.RequireRoles(auth.RoleAdmin))).Get("/admin", h)
func RequireAccess(g *Gate, res Resource) func(http.Handler) http.Handler {
	return RequireAccessFunc(g, func(*http.Request) Resource { return res })
}

// RequireAccessFunc is RequireAccess with the resource chosen per request.
func RequireAccessFunc(g *Gate, resolve func(*http.Request) Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.CheckAuthenticated(r.Context(), RequestFromHTTP(r), resolve(r))

			switch d.Outcome {
			case RejectedAuthFailed:
				w.Header().Set("WWW-Authenticate", `Bearer realm="agentguard"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			case RejectedAuthzFailed:
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			ctx := r.Context()
			if d.Security != nil {
				ctx = WithSecurityContext(ctx, d.Security)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
