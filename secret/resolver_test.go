package secret

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	name    string
	values  map[string]string
	resolve func(ref string) (string, error)
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	if s.resolve != nil {
		return s.resolve(ref)
	}
	if s.values == nil {
		return "", nil
	}
	return s.values[ref], nil
}

func (s *stubProvider) Close() error { return nil }

func TestParseSecretRef(t *testing.T) {
	provider, ref, ok := ParseSecretRef("secretref:env:AGENT_JWT_SECRET")
	if !ok {
		t.Fatalf("expected secretref to parse")
	}
	if provider != "env" || ref != "AGENT_JWT_SECRET" {
		t.Fatalf("unexpected values: %q %q", provider, ref)
	}

	if _, _, ok = ParseSecretRef("not-a-secretref"); ok {
		t.Fatalf("expected non-secretref to fail")
	}
	if _, _, ok = ParseSecretRef("secretref:env:"); ok {
		t.Fatalf("expected empty ref to fail")
	}
}

func TestRef(t *testing.T) {
	if got := Ref("properties", "agent.jwt.secret"); got != "secretref:properties:agent.jwt.secret" {
		t.Fatalf("Ref() = %q", got)
	}
}

func TestResolver_ResolvesFullSecretRef(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}})

	got, err := r.ResolveValue(context.Background(), "secretref:stub:alpha")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "one" {
		t.Fatalf("ResolveValue() = %q, want %q", got, "one")
	}
}

func TestResolver_UnknownProvider(t *testing.T) {
	r := NewResolver(false)

	_, err := r.ResolveValue(context.Background(), "secretref:vault:alpha")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("ResolveValue() error = %v, want ErrUnknownProvider", err)
	}
}

func TestResolver_StrictEmptyProviderValueErrors(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"empty": ""}})

	if _, err := r.ResolveValue(context.Background(), "secretref:stub:empty"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolver_ResolveFirst(t *testing.T) {
	primary := &stubProvider{name: "primary", values: map[string]string{"k": "   "}}
	fallback := &stubProvider{name: "fallback", values: map[string]string{"k": "from-fallback"}}
	r := NewResolver(false, primary, fallback)

	got, err := r.ResolveFirst(context.Background(), "secretref:primary:k", "secretref:fallback:k")
	if err != nil {
		t.Fatalf("ResolveFirst() error = %v", err)
	}
	if got != "from-fallback" {
		t.Fatalf("ResolveFirst() = %q, want %q", got, "from-fallback")
	}
}

func TestResolver_ResolveFirstPrefersEarlierRef(t *testing.T) {
	primary := &stubProvider{name: "primary", values: map[string]string{"k": "first"}}
	fallback := &stubProvider{name: "fallback", values: map[string]string{"k": "second"}}
	r := NewResolver(false, primary, fallback)

	got, err := r.ResolveFirst(context.Background(), "secretref:primary:k", "secretref:fallback:k")
	if err != nil {
		t.Fatalf("ResolveFirst() error = %v", err)
	}
	if got != "first" {
		t.Fatalf("ResolveFirst() = %q, want %q", got, "first")
	}
}

func TestResolver_ResolveFirstNotConfigured(t *testing.T) {
	r := NewResolver(false, &stubProvider{name: "stub"})

	_, err := r.ResolveFirst(context.Background(), "secretref:stub:a", "secretref:stub:b")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("ResolveFirst() error = %v, want ErrNotConfigured", err)
	}
}

func TestResolver_ProviderResolveErrorPropagates(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", resolve: func(ref string) (string, error) {
		if ref == "boom" {
			return "", errors.New("explode")
		}
		return "ok", nil
	}})

	if _, err := r.ResolveFirst(context.Background(), "secretref:stub:boom", "secretref:stub:fine"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDefaultResolver_EnvThenProperties(t *testing.T) {
	props := NewProperties()
	props.Set("agent.jwt.secret", "from-props")
	r := NewDefaultResolver(props)
	refs := []string{Ref("env", "AGENTGUARD_TEST_SECRET"), Ref("properties", "agent.jwt.secret")}

	t.Setenv("AGENTGUARD_TEST_SECRET", "")
	got, err := r.ResolveFirst(context.Background(), refs...)
	if err != nil {
		t.Fatalf("ResolveFirst() error = %v", err)
	}
	if got != "from-props" {
		t.Fatalf("ResolveFirst() = %q, want from-props", got)
	}

	t.Setenv("AGENTGUARD_TEST_SECRET", "from-env")
	got, err = r.ResolveFirst(context.Background(), refs...)
	if err != nil {
		t.Fatalf("ResolveFirst() error = %v", err)
	}
	if got != "from-env" {
		t.Fatalf("ResolveFirst() = %q, want from-env", got)
	}
}
