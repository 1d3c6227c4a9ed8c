package token

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// MaxTokenLength bounds the size of a token accepted by Decode.
const MaxTokenLength = 8192

var (
	segmentEncoding = base64.RawURLEncoding
	strictEncoding  = base64.RawURLEncoding.Strict()
	encodedHeader   = segmentEncoding.EncodeToString([]byte(Header))
	signingMethod   = jwt.SigningMethodHS256
)

// Codec encodes and decodes signed tokens.
//
// Codec is stateless apart from its KeySource and is safe for concurrent use.
type Codec struct {
	keys KeySource
}

// NewCodec creates a codec that signs with keys. A nil KeySource resolves
// the secret from DefaultRefs.
func NewCodec(keys KeySource) *Codec {
	if keys == nil {
		keys = ResolvedKey(nil)
	}
	return &Codec{keys: keys}
}

// Encode serializes p in canonical form and signs it.
//
// The payload is normalized first, so Encode(p) == Encode(p.Normalize()).
// Encoding is deterministic for a given payload and secret.
func (c *Codec) Encode(ctx context.Context, p Payload) (string, error) {
	key, err := c.signingKey(ctx)
	if err != nil {
		return "", err
	}

	body := segmentEncoding.EncodeToString([]byte(marshalPayload(p.Normalize())))
	signingInput := encodedHeader + "." + body

	sig, err := signingMethod.Sign(signingInput, key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signingInput + "." + segmentEncoding.EncodeToString(sig), nil
}

// Decode verifies tok and returns its claims.
//
// Errors wrap ErrFormat, ErrConfiguration or ErrIntegrity; use Classify to
// branch on them. Unknown claim keys and malformed pairs are ignored.
func (c *Codec) Decode(ctx context.Context, tok string) (Payload, error) {
	header, body, sig, err := split(tok)
	if err != nil {
		return Payload{}, err
	}

	key, err := c.signingKey(ctx)
	if err != nil {
		return Payload{}, err
	}

	rawSig, err := strictEncoding.DecodeString(sig)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: signature encoding", ErrIntegrity)
	}
	// Verify compares with hmac.Equal, which runs in constant time.
	if err := signingMethod.Verify(header+"."+body, rawSig, key); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}

	data, err := strictEncoding.DecodeString(body)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: payload encoding: %v", ErrFormat, err)
	}
	return unmarshalPayload(string(data)), nil
}

// Verify reports whether tok decodes successfully.
func (c *Codec) Verify(ctx context.Context, tok string) error {
	_, err := c.Decode(ctx, tok)
	return err
}

// SigningKeyAvailable reports whether the KeySource currently yields a key.
func (c *Codec) SigningKeyAvailable(ctx context.Context) error {
	_, err := c.signingKey(ctx)
	return err
}

func (c *Codec) signingKey(ctx context.Context) ([]byte, error) {
	key, err := c.keys.SigningKey(ctx)
	if err != nil {
		if Classify(err) == StatusConfiguration {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if len(key) == 0 {
		return nil, ErrConfiguration
	}
	return key, nil
}

func split(tok string) (header, body, sig string, err error) {
	if strings.TrimSpace(tok) == "" {
		return "", "", "", fmt.Errorf("%w: empty token", ErrFormat)
	}
	if len(tok) > MaxTokenLength {
		return "", "", "", fmt.Errorf("%w: token exceeds %d bytes", ErrFormat, MaxTokenLength)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("%w: want 3 segments, got %d", ErrFormat, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", fmt.Errorf("%w: empty segment", ErrFormat)
		}
	}
	return parts[0], parts[1], parts[2], nil
}
