package token

import "errors"

// Sentinel errors for token operations.
var (
	// ErrConfiguration indicates no signing secret could be resolved.
	ErrConfiguration = errors.New("token: signing secret not configured")

	// ErrFormat indicates the token is not three well-formed segments.
	ErrFormat = errors.New("token: malformed")

	// ErrIntegrity indicates the signature does not match the content.
	ErrIntegrity = errors.New("token: signature mismatch")
)

// Status classifies the outcome of a codec operation.
type Status int

const (
	StatusOK Status = iota
	StatusConfiguration
	StatusFormat
	StatusIntegrity
)

// String returns a short lowercase name suitable for logs and metric labels.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusConfiguration:
		return "configuration"
	case StatusFormat:
		return "format"
	case StatusIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by the codec to a Status.
// Errors outside the codec taxonomy classify as StatusFormat.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrConfiguration):
		return StatusConfiguration
	case errors.Is(err, ErrIntegrity):
		return StatusIntegrity
	default:
		return StatusFormat
	}
}
