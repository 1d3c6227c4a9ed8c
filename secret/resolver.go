package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for secret resolution.
var (
	// ErrNotConfigured indicates no reference produced a non-blank value.
	ErrNotConfigured = errors.New("secret: not configured")

	// ErrUnknownProvider indicates a reference named an unregistered provider.
	ErrUnknownProvider = errors.New("secret: unknown provider")
)

// Resolver resolves secret references using registered providers.
//
// Values with the prefix "secretref:" are resolved via providers.
// Other values are returned after strict environment expansion.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider),
		strict:    strict,
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.Name()] = p
	}
	return r
}

// NewDefaultResolver returns a resolver over the environment and props.
func NewDefaultResolver(props *Properties) *Resolver {
	return NewResolver(false, NewEnvProvider(), NewPropertiesProvider(props))
}

// Register registers a provider with the resolver.
func (r *Resolver) Register(provider Provider) {
	if r == nil || provider == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue resolves environment variables and secret refs in value.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}

	if providerName, ref, ok := ParseSecretRef(expanded); ok {
		if r == nil {
			return "", fmt.Errorf("%w: %q", ErrUnknownProvider, providerName)
		}
		return r.resolveSingle(ctx, providerName, ref)
	}
	return expanded, nil
}

// ResolveFirst resolves refs in order and returns the first non-blank value.
// It returns ErrNotConfigured when every reference is absent or blank.
func (r *Resolver) ResolveFirst(ctx context.Context, refs ...string) (string, error) {
	for _, ref := range refs {
		value, err := r.ResolveValue(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", ref, err)
		}
		if strings.TrimSpace(value) != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrNotConfigured, strings.Join(refs, ", "))
}

// ParseSecretRef parses a full secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	const prefix = "secretref:"
	if !strings.HasPrefix(value, prefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(value, prefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Ref formats a secret reference for provider and key.
func Ref(provider, key string) string {
	return "secretref:" + provider + ":" + key
}

func (r *Resolver) resolveSingle(ctx context.Context, providerName string, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", errors.New("secret ref is required")
	}
	provider, ok := r.providers[providerName]
	if !ok || provider == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, providerName)
	}
	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("secret provider %q returned empty value", providerName)
	}
	return resolved, nil
}
