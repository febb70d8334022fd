package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrorKind is the closed set of identity failures callers may branch on.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindMissingToken
	KindMalformed
	KindInvalidSignature
	KindExpired
	KindNotYetValid
	KindInvalidClaims
	KindUnknown
)

var kindNames = map[ErrorKind]string{
	KindNone:             "none",
	KindMissingToken:     "missing-token",
	KindMalformed:        "malformed",
	KindInvalidSignature: "invalid-signature",
	KindExpired:          "expired",
	KindNotYetValid:      "not-yet-valid",
	KindInvalidClaims:    "invalid-claims",
	KindUnknown:          "unknown",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error wraps an underlying failure with its kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "identity: " + e.Kind.String()
	}
	return "identity: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Kind reports the kind of err. A nil error is KindNone; errors not produced
// by this package are KindUnknown.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindUnknown
}

// classify maps jwt parser errors onto the closed kind set.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return KindMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return KindInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return KindExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return KindNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidClaims),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return KindInvalidClaims
	}
	return KindUnknown
}

func wrap(err error) error {
	return &Error{Kind: classify(err), Err: err}
}
