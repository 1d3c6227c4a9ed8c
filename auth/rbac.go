package auth

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ResourceTable maps resource names to their requirements.
//
// Patterns are exact names or prefixes ending in "*". Lookup prefers an
// exact match, then the longest matching prefix, then the table default.
type ResourceTable struct {
	exact    map[string]Requirements
	prefixes []tableRule
	fallback Requirements
}

type tableRule struct {
	pattern string
	req     Requirements
}

// NewResourceTable builds a table from rules. Resources matching no rule
// get fallback; the zero Requirements allows any authenticated caller.
func NewResourceTable(rules map[string]Requirements, fallback Requirements) *ResourceTable {
	t := &ResourceTable{
		exact:    make(map[string]Requirements),
		fallback: fallback,
	}
	for pattern, req := range rules {
		if strings.HasSuffix(pattern, "*") {
			t.prefixes = append(t.prefixes, tableRule{pattern: pattern, req: req})
			continue
		}
		t.exact[pattern] = req
	}
	sort.Slice(t.prefixes, func(i, j int) bool {
		a, b := t.prefixes[i].pattern, t.prefixes[j].pattern
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return t
}

// Lookup returns the requirements for resource.
func (t *ResourceTable) Lookup(resource string) Requirements {
	if req, ok := t.exact[resource]; ok {
		return req
	}
	for _, rule := range t.prefixes {
		if matchPattern(rule.pattern, resource) {
			return rule.req
		}
	}
	return t.fallback
}

// ForRequest returns the requirements for the request path. It has the
// shape RequireAccessFunc expects.
func (t *ResourceTable) ForRequest(r *http.Request) Resource {
	return t.Lookup(r.URL.Path)
}

// Len returns the number of rules.
func (t *ResourceTable) Len() int {
	return len(t.exact) + len(t.prefixes)
}

// ParseRequirements builds Requirements from vocabulary names, rejecting
// names outside the role or permission vocabulary.
func ParseRequirements(roleNames, permissionNames []string) (Requirements, error) {
	var req Requirements
	for _, n := range roleNames {
		r, ok := ParseRole(strings.TrimSpace(n))
		if !ok {
			return Requirements{}, fmt.Errorf("auth: unknown role %q", n)
		}
		req.Roles = append(req.Roles, string(r))
	}
	for _, n := range permissionNames {
		p, ok := ParsePermission(strings.TrimSpace(n))
		if !ok {
			return Requirements{}, fmt.Errorf("auth: unknown permission %q", n)
		}
		req.Permissions = append(req.Permissions, string(p))
	}
	return req, nil
}

// matchPattern matches a pattern against a value.
// Supports "*" as a wildcard for any characters.
func matchPattern(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(value, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == value
}
