package secret

import (
	"context"
	"os"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
// A reference that is simply absent resolves to ("", nil); errors are reserved
// for providers that could not be consulted at all.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves references as environment variable names.
type EnvProvider struct{}

// NewEnvProvider creates an environment provider.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve returns the value of the environment variable named by ref.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	return os.Getenv(strings.TrimSpace(ref)), nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error { return nil }

// PropertiesProvider resolves references as keys in a Properties store.
// Values are returned verbatim; a '$' in a property is part of the secret.
type PropertiesProvider struct {
	props *Properties
}

// NewPropertiesProvider creates a provider backed by props.
// A nil props uses the process-wide DefaultProperties.
func NewPropertiesProvider(props *Properties) *PropertiesProvider {
	if props == nil {
		props = DefaultProperties
	}
	return &PropertiesProvider{props: props}
}

// Name returns "properties".
func (p *PropertiesProvider) Name() string { return "properties" }

// Resolve returns the property value for ref.
func (p *PropertiesProvider) Resolve(_ context.Context, ref string) (string, error) {
	value, ok := p.props.Get(strings.TrimSpace(ref))
	if !ok {
		return "", nil
	}
	return value, nil
}

// Close is a no-op.
func (p *PropertiesProvider) Close() error { return nil }

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*PropertiesProvider)(nil)
)
