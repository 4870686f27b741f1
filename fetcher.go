package jsonfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v5"
	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// redirectErrorString is used to spot redirect loops, which can never
	// succeed on retry. net/http doesn't use a specific error type that we can
	// plug into `errors.Is(err, ..)`, nor does it export this string, and wraps
	// it with request context- so we can't use string equality either.
	redirectErrorString = regexp.MustCompile("stopped after 10 redirects")

	// defaultClient serves Fetchers which weren't created with New
	defaultClient = sync.OnceValue(cleanhttp.DefaultPooledClient)
)

// A Fetcher performs retrying JSON reads. It is safe for concurrent use; each
// fetch keeps its own attempt count and backoff.
//
// The zero value is usable: a nil Client falls back to a shared pooled client,
// and the zero Logger discards everything.
type Fetcher struct {
	*http.Client

	// Logger receives a warning for every retry
	Logger zerolog.Logger

	// Observer, when set, is told about every retry
	Observer RetryObserver

	// Metrics, when set, records attempts, retries and results
	Metrics *Metrics
}

// New returns a Fetcher using a pooled client from go-cleanhttp, and logging
// retries through the global zerolog logger
func New() *Fetcher {
	return &Fetcher{
		Client: cleanhttp.DefaultPooledClient(),
		Logger: log.Logger,
	}
}

// Fetch is FetchWithContext with a background context
func (f Fetcher) Fetch(req *Request) (any, error) {
	return f.FetchWithContext(context.Background(), req)
}

// FetchWithContext GETs req and decodes the response body as JSON.
//
// Transport failures (refused connections, timeouts, broken bodies) are retried up to
// req.MaxRetries() times, waiting req.Backoff() multiplied by the retry number before
// each one. Once the budget is spent, a KindRetryExhausted error is returned.
//
// A 4xx or 5xx response fails immediately with KindHTTPStatus, and a successful
// response whose body isn't a single JSON document fails immediately with KindDecode;
// neither uses up any retries.
//
// Cancelling ctx aborts the current attempt or backoff wait with a KindTransport error.
// If ctx was created with NewContext, or WithMetadata, then attempt counts and
// durations may be read from it afterwards.
func (f Fetcher) FetchWithContext(ctx context.Context, req *Request) (v any, err error) {
	defer func() {
		f.Metrics.recordFetch(err)
	}()

	if req == nil {
		return nil, invalidRequest("request cannot be nil")
	}

	metadata, ok := getFetchMetadata(ctx)
	if !ok {
		// Contexts not created by NewContext() are cool, we just can't
		// report anything back through them
		metadata = new(fetchMetadata)
	}

	*metadata = fetchMetadata{}

	target := req.URL()

	operation := func() (any, error) {
		metadata.attempts++

		start := time.Now()
		v, err := f.attempt(ctx, req, target)
		elapsed := time.Since(start)

		f.Metrics.recordAttempt(attemptOutcome(err), elapsed)

		if err == nil {
			metadata.successfulDuration = elapsed

			return v, nil
		}

		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return nil, err
		}

		// The first attempt isn't a retry, it's a _try_, so only give up
		// once failures outnumber the retry budget
		if metadata.attempts > req.maxRetries {
			return nil, backoff.Permanent(&Error{
				Kind:    KindRetryExhausted,
				URL:     target,
				Retries: req.maxRetries,
				Err:     errors.Unwrap(err),
			})
		}

		return nil, err
	}

	notify := func(err error, delay time.Duration) {
		metadata.retries++
		f.Metrics.recordRetry()

		n := RetryNotice{
			URL:        target,
			Attempt:    metadata.attempts,
			MaxRetries: req.maxRetries,
			Delay:      delay,
			Err:        errors.Unwrap(err),
		}

		logRetry(f.Logger, n)

		if f.Observer != nil {
			f.Observer.OnRetry(n)
		}
	}

	v, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(newLinearBackOff(req.backoff)),
		backoff.WithNotify(notify),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			// Only a done context gets us here, while waiting between attempts
			return nil, &Error{Kind: KindTransport, URL: target, Err: err}
		}

		return nil, e
	}

	return v, nil
}

// attempt makes a single GET, returning either the decoded body, a retryable
// *Error, or a *backoff.PermanentError wrapping an *Error
func (f Fetcher) attempt(ctx context.Context, req *Request, target string) (any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, req.timeout)
	defer cancel()

	httpReq, err := req.newHTTPRequest(attemptCtx)
	if err != nil {
		return nil, backoff.Permanent(&Error{Kind: KindTransport, URL: target, Err: err})
	}

	resp, err := f.httpClient().Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, target, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, target, err)
	}

	if resp.StatusCode >= 400 {
		return nil, backoff.Permanent(&Error{
			Kind:       KindHTTPStatus,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		})
	}

	v, err := decodeJSON(body)
	if err != nil {
		return nil, backoff.Permanent(&Error{Kind: KindDecode, URL: target, Err: err})
	}

	return v, nil
}

func (f Fetcher) httpClient() *http.Client {
	if f.Client == nil {
		return defaultClient()
	}

	return f.Client
}

// transportError classifies err, returned while sending a request or reading
// its body. Anything which may be transient is retryable.
func transportError(ctx context.Context, target string, err error) error {
	e := &Error{Kind: KindTransport, URL: target, Err: err}

	switch {
	case ctx.Err() != nil,
		redirectErrorString.MatchString(err.Error()):
		return backoff.Permanent(e)
	}

	return e
}

// decodeJSON decodes exactly one JSON document from body, keeping numbers as
// json.Number so that large integers survive the round trip
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("unexpected %v after top-level value", tok)
	}

	return v, nil
}

func attemptOutcome(err error) string {
	if err == nil {
		return "success"
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}

	return "unknown"
}
