// Package token encodes and decodes the compact signed tokens that carry a
// caller's identity between services.
//
// A token is three base64url (unpadded) segments joined by dots:
//
//	header.payload.signature
//
// The header is the fixed HS256 descriptor. The payload is a URL-form
// serialization of the claim set in a fixed key order:
//
//	userId=…&roles=…&permissions=…&serviceId=…&serviceType=…
//
// with list claims comma-joined before escaping. The signature is
// HMAC-SHA256 over "header.payload" with a server-held secret.
//
// Tokens carry no expiry or nonce: the same claims and secret always produce
// the same token, and a token stays valid for as long as the secret does.
package token
