package jsonfetch

import (
	"errors"
	"fmt"
)

// ErrorKind is a machine readable discriminant attached to every *Error
type ErrorKind int

const (
	// KindTransport is a connection or timeout failure. On its own it is
	// retried; it only reaches the caller when it can never succeed (redirect
	// loops, untrusted certs) or when the caller's context is done
	KindTransport ErrorKind = iota + 1

	// KindHTTPStatus means the server answered with a 4xx or 5xx status
	KindHTTPStatus

	// KindDecode means the server answered successfully, but the body wasn't JSON
	KindDecode

	// KindRetryExhausted means transport failures outlasted the retry budget
	KindRetryExhausted

	// KindInvalidRequest is returned by NewRequest for unusable input
	KindInvalidRequest
)

// String implements fmt.Stringer
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http_status"
	case KindDecode:
		return "decode"
	case KindRetryExhausted:
		return "retry_exhausted"
	case KindInvalidRequest:
		return "invalid_request"
	}

	return "unknown"
}

// Sentinels for use with errors.Is; an *Error matches the sentinel of its Kind
var (
	ErrTransport      = &Error{Kind: KindTransport}
	ErrHTTPStatus     = &Error{Kind: KindHTTPStatus}
	ErrDecode         = &Error{Kind: KindDecode}
	ErrRetryExhausted = &Error{Kind: KindRetryExhausted}
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest}
)

// Error is the single failure type returned from a fetch
type Error struct {
	Kind ErrorKind
	URL  string

	// StatusCode is set for KindHTTPStatus
	StatusCode int

	// Retries is the number of retries attempted, set for KindRetryExhausted
	Retries int

	// Err is the underlying cause, if any
	Err error
}

// Error implements the `Error` interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindRetryExhausted:
		return fmt.Sprintf("failed to fetch %s after %d retries due to network error: %v", e.URL, e.Retries, e.Err)
	case KindHTTPStatus:
		return fmt.Sprintf("HTTP error %d while fetching %s: %v", e.StatusCode, e.URL, e.Err)
	case KindDecode:
		return fmt.Sprintf("failed to parse JSON response from %s: %v", e.URL, e.Err)
	case KindInvalidRequest:
		return fmt.Sprintf("invalid request: %v", e.Err)
	}

	return fmt.Sprintf("network error while fetching %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == t.Kind
}

// IsKind reports whether err, or anything it wraps, is an *Error of kind k
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Kind == k
}

func invalidRequest(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf(format, args...)}
}
