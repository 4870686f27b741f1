package jsonfetch

import (
	"time"

	backoff "github.com/cenkalti/backoff/v5"
)

// linearBackOff implements backoff.BackOff, waiting base*n before the nth retry.
//
// It is not safe for concurrent use; create one per fetch.
type linearBackOff struct {
	base  time.Duration
	retry int
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func newLinearBackOff(base time.Duration) *linearBackOff {
	return &linearBackOff{base: base}
}

// NextBackOff implements backoff.BackOff
func (b *linearBackOff) NextBackOff() time.Duration {
	b.retry++

	return b.base * time.Duration(b.retry)
}

// Reset implements backoff.BackOff
func (b *linearBackOff) Reset() {
	b.retry = 0
}
