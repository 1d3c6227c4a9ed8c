package token

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/agentguard/secret"
)

// Default secret locations.
const (
	EnvSecret      = "AGENT_JWT_SECRET"
	PropertySecret = "agent.jwt.secret"
)

// DefaultRefs are the secret references tried in order when none are given:
// the environment first, then the process property store.
var DefaultRefs = []string{
	secret.Ref("env", EnvSecret),
	secret.Ref("properties", PropertySecret),
}

// KeySource supplies the HMAC signing key.
//
// Implementations must be safe for concurrent use. The codec calls
// SigningKey on every Encode and Decode.
type KeySource interface {
	SigningKey(ctx context.Context) ([]byte, error)
}

// KeySourceFunc adapts a function to KeySource.
type KeySourceFunc func(ctx context.Context) ([]byte, error)

// SigningKey calls f.
func (f KeySourceFunc) SigningKey(ctx context.Context) ([]byte, error) { return f(ctx) }

// StaticKey returns a KeySource for a fixed secret. A blank secret yields
// ErrConfiguration on every call.
func StaticKey(s string) KeySource {
	return KeySourceFunc(func(context.Context) ([]byte, error) {
		if strings.TrimSpace(s) == "" {
			return nil, ErrConfiguration
		}
		return []byte(s), nil
	})
}

// ResolvedKey returns a KeySource that resolves refs through r on every call.
// With no refs it uses DefaultRefs; a nil resolver uses the environment and
// secret.DefaultProperties.
func ResolvedKey(r *secret.Resolver, refs ...string) KeySource {
	if r == nil {
		r = secret.NewDefaultResolver(nil)
	}
	if len(refs) == 0 {
		refs = DefaultRefs
	}
	refs = append([]string(nil), refs...)
	return &resolvedKey{resolver: r, refs: refs}
}

type resolvedKey struct {
	resolver *secret.Resolver
	refs     []string
}

func (k *resolvedKey) SigningKey(ctx context.Context) ([]byte, error) {
	v, err := k.resolver.ResolveFirst(ctx, k.refs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return []byte(v), nil
}
