package jsonfetch

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"time"
)

const (
	// DefaultMaxRetries is the number of retries a Request gets, for a total of 4 calls
	DefaultMaxRetries = 3

	// DefaultBackoff is the base delay; the nth retry waits n times this long
	DefaultBackoff = 2 * time.Second

	// DefaultTimeout bounds each individual attempt
	DefaultTimeout = 10 * time.Second
)

// A Request describes a single logical JSON read. It can't be modified once
// NewRequest returns, and so may be shared between goroutines and reused
// across fetches.
type Request struct {
	url        *url.URL
	headers    map[string]string
	params     map[string]any
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
}

// A RequestOption configures a Request under construction
type RequestOption func(*Request) error

// NewRequest returns a Request for rawURL, with the default retry budget,
// backoff and timeout, modified by opts.
func NewRequest(rawURL string, opts ...RequestOption) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, URL: rawURL, Err: err}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalidRequest("unsupported scheme %q in %q", u.Scheme, rawURL)
	}

	if u.Host == "" {
		return nil, invalidRequest("missing host in %q", rawURL)
	}

	r := &Request{
		url:        u,
		headers:    make(map[string]string),
		params:     make(map[string]any),
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		timeout:    DefaultTimeout,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// WithHeader sets a single request header
func WithHeader(key, value string) RequestOption {
	return func(r *Request) error {
		r.headers[key] = value

		return nil
	}
}

// WithHeaders copies headers into the request
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) error {
		maps.Copy(r.headers, headers)

		return nil
	}
}

// WithParam sets a single query parameter. See WithParams for how values are encoded.
func WithParam(key string, value any) RequestOption {
	return func(r *Request) error {
		r.params[key] = value

		return nil
	}
}

// WithParams copies params into the request's query parameters, which are
// added to any query already present in the URL.
//
// nil values are skipped, slices repeat the key once per element, and anything
// else is formatted with fmt.Sprint.
func WithParams(params map[string]any) RequestOption {
	return func(r *Request) error {
		maps.Copy(r.params, params)

		return nil
	}
}

// WithMaxRetries sets the number of retries after the first attempt. Zero
// disables retries.
func WithMaxRetries(n int) RequestOption {
	return func(r *Request) error {
		if n < 0 {
			return invalidRequest("max retries must not be negative, got %d", n)
		}

		r.maxRetries = n

		return nil
	}
}

// WithBackoff sets the base delay between retries
func WithBackoff(d time.Duration) RequestOption {
	return func(r *Request) error {
		if d <= 0 {
			return invalidRequest("backoff must be positive, got %s", d)
		}

		r.backoff = d

		return nil
	}
}

// WithTimeout sets the per attempt timeout, covering connect, headers and body
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) error {
		if d <= 0 {
			return invalidRequest("timeout must be positive, got %s", d)
		}

		r.timeout = d

		return nil
	}
}

// WithConfig applies the retry budget, backoff and timeout from cfg
func WithConfig(cfg Config) RequestOption {
	return func(r *Request) error {
		for _, opt := range []RequestOption{
			WithMaxRetries(cfg.MaxRetries),
			WithBackoff(cfg.Backoff),
			WithTimeout(cfg.Timeout),
		} {
			if err := opt(r); err != nil {
				return err
			}
		}

		return nil
	}
}

// URL returns the target, including any encoded params
func (r *Request) URL() string {
	return r.target().String()
}

// Headers returns a copy of the request headers
func (r *Request) Headers() map[string]string {
	return maps.Clone(r.headers)
}

// MaxRetries returns the retry budget
func (r *Request) MaxRetries() int {
	return r.maxRetries
}

// Backoff returns the base delay between retries
func (r *Request) Backoff() time.Duration {
	return r.backoff
}

// Timeout returns the per attempt timeout
func (r *Request) Timeout() time.Duration {
	return r.timeout
}

func (r *Request) target() *url.URL {
	u := *r.url

	if len(r.params) == 0 {
		return &u
	}

	q := make(url.Values, len(r.params))
	for k, v := range r.params {
		for _, s := range paramValues(v) {
			q.Add(k, s)
		}
	}

	// The existing query is sent as written, with params after it
	if enc := q.Encode(); enc != "" {
		if u.RawQuery != "" {
			u.RawQuery += "&" + enc
		} else {
			u.RawQuery = enc
		}
	}

	return &u
}

func paramValues(v any) []string {
	switch vv := v.(type) {
	case nil:
		return nil
	case string:
		return []string{vv}
	case []string:
		return vv
	case []byte:
		return []string{string(vv)}
	case fmt.Stringer:
		return []string{vv.String()}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]string, 0, rv.Len())
		for i := range rv.Len() {
			out = append(out, paramValues(rv.Index(i).Interface())...)
		}

		return out
	}

	return []string{fmt.Sprint(v)}
}

// newHTTPRequest builds the GET for a single attempt.
//
// A fresh *http.Request is built per attempt, rather than reused, since
// net/http doesn't allow a request to be sent again once its context has
// been cancelled.
func (r *Request) newHTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.target().String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}
