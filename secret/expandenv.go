package secret

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrMissingVariable reports a ${VAR} reference with no value and no default.
var ErrMissingVariable = errors.New("secret: missing environment variable")

// ${NAME} or ${NAME:-default}
var varRef = regexp.MustCompile(`\$\$|\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnvStrict expands ${VAR} references in s from the process
// environment. See Expand.
func ExpandEnvStrict(s string) (string, error) {
	return Expand(s, os.LookupEnv)
}

// Expand replaces ${VAR} and ${VAR:-default} references using lookup.
//
// A ${VAR} whose variable is unset fails with ErrMissingVariable; the error
// names every missing variable. ${VAR:-default} uses default when VAR is
// unset or empty. "$$" is a literal "$". Bare $VAR is left alone so secrets
// containing dollar signs survive unexpanded.
func Expand(s string, lookup func(string) (string, bool)) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}

	var missing []string
	out := varRef.ReplaceAllStringFunc(s, func(m string) string {
		if m == "$$" {
			return "$"
		}
		sub := varRef.FindStringSubmatch(m)
		name, hasDefault, def := sub[1], sub[2] != "", sub[3]

		v, ok := lookup(name)
		switch {
		case ok && (v != "" || !hasDefault):
			return v
		case hasDefault:
			return def
		default:
			missing = append(missing, name)
			return m
		}
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, strings.Join(missing, ", "))
	}
	return out, nil
}
