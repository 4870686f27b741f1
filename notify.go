package jsonfetch

import (
	"time"

	"github.com/rs/zerolog"
)

// A RetryNotice describes a transport failure that is about to be retried
type RetryNotice struct {
	URL string

	// Attempt is the 1-based number of the attempt that failed
	Attempt    int
	MaxRetries int

	// Delay is how long the fetcher will wait before the next attempt
	Delay time.Duration
	Err   error
}

// A RetryObserver is told about every retry a Fetcher schedules. OnRetry is
// called synchronously, before the fetcher goes to sleep.
type RetryObserver interface {
	OnRetry(RetryNotice)
}

// RetryObserverFunc adapts a plain function to a RetryObserver
type RetryObserverFunc func(RetryNotice)

// OnRetry implements RetryObserver
func (f RetryObserverFunc) OnRetry(n RetryNotice) {
	f(n)
}

func logRetry(l zerolog.Logger, n RetryNotice) {
	l.Warn().
		Err(n.Err).
		Str("url", n.URL).
		Int("attempt", n.Attempt).
		Int("max_retries", n.MaxRetries).
		Dur("delay", n.Delay).
		Msg("network error, retrying")
}
