package jsonfetch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	cause := errors.New("connection refused")

	for _, test := range []struct {
		name   string
		err    *Error
		expect string
	}{
		{
			"Retry exhausted",
			&Error{Kind: KindRetryExhausted, URL: "http://x", Retries: 3, Err: cause},
			"failed to fetch http://x after 3 retries due to network error: connection refused",
		},
		{
			"HTTP status",
			&Error{Kind: KindHTTPStatus, URL: "http://x", StatusCode: 404, Err: errors.New("404 Not Found")},
			"HTTP error 404 while fetching http://x: 404 Not Found",
		},
		{
			"Decode",
			&Error{Kind: KindDecode, URL: "http://x", Err: errors.New("EOF")},
			"failed to parse JSON response from http://x: EOF",
		},
		{
			"Transport",
			&Error{Kind: KindTransport, URL: "http://x", Err: cause},
			"network error while fetching http://x: connection refused",
		},
		{
			"Invalid request",
			invalidRequest("max retries must not be negative, got %d", -1),
			"invalid request: max retries must not be negative, got -1",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expect, test.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{Kind: KindDecode, URL: "http://x"})

	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrHTTPStatus)
	assert.True(t, IsKind(err, KindDecode))
	assert.False(t, IsKind(err, KindTransport))
	assert.False(t, IsKind(errors.New("plain"), KindDecode))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := &Error{Kind: KindRetryExhausted, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "retry_exhausted", KindRetryExhausted.String())
	assert.Equal(t, "unknown", ErrorKind(0).String())
}
