package auth

import (
	"context"
	"testing"

	"github.com/jonwraymond/agentguard/token"
)

const testSecret = "test-secret"

func testCodec() *token.Codec {
	return token.NewCodec(token.StaticKey(testSecret))
}

func newTestValidator(t testing.TB, opts ...Option) *Validator {
	t.Helper()
	v, err := NewValidator(testCodec(), opts...)
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	return v
}

// signed encodes p with the test secret, bypassing the builder so tests can
// produce incomplete or off-vocabulary tokens.
func signed(t testing.TB, p token.Payload) string {
	t.Helper()
	tok, err := testCodec().Encode(context.Background(), p)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return tok
}

func fullPayload() token.Payload {
	return token.NewPayload("u1", []string{"ADMIN"}, []string{"AGENT_READ"}, "svc1", "internal")
}

func callerContext(t testing.TB, roles []string, perms []string) *SecurityContext {
	t.Helper()
	return FromToken(signed(t, token.NewPayload("u1", roles, perms, "svc1", "internal")))
}
