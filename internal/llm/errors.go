package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorKind is the closed set of provider failures callers branch on.
type ErrorKind int

const (
	// KindUnavailable covers network failures and 5xx replies.
	KindUnavailable ErrorKind = iota
	KindRateLimited
	// KindInvalidResponse is a reply that is not valid JSON or does not
	// match the requested schema.
	KindInvalidResponse
	// KindTruncated is a structured reply cut off by MaxTokens.
	KindTruncated
	// KindRejected is a 4xx other than 429; retrying cannot help.
	KindRejected
)

var errorKindNames = map[ErrorKind]string{
	KindUnavailable:     "unavailable",
	KindRateLimited:     "rate-limited",
	KindInvalidResponse: "invalid-response",
	KindTruncated:       "truncated",
	KindRejected:        "rejected",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is a classified provider failure.
type Error struct {
	Kind     ErrorKind
	Provider string

	// RetryAfter is the vendor's requested delay for KindRateLimited, when
	// it sent one.
	RetryAfter time.Duration

	// Content is the offending reply for KindInvalidResponse and
	// KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := "llm"
	if e.Provider != "" {
		msg += " " + e.Provider
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err and whether it came from this package.
func KindOf(err error) (ErrorKind, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return KindUnavailable, false
}

// statusError classifies a vendor API error by HTTP status. A zero status
// means the request never got a reply.
func statusError(provider string, status int, err error) *Error {
	kind := KindUnavailable
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 400 && status < 500:
		kind = KindRejected
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}

func invalidResponse(provider string, content json.RawMessage, format string, args ...any) *Error {
	return &Error{
		Kind:     KindInvalidResponse,
		Provider: provider,
		Content:  content,
		Err:      fmt.Errorf(format, args...),
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
