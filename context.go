package jsonfetch

import (
	"context"
	"time"
)

// fetchMetadata is stored as a pointer inside our contexts so that FetchWithContext
// can report back on what it did
type fetchMetadata struct {
	attempts           int
	retries            int
	successfulDuration time.Duration
}

// fetchMetadataContextKey is used to key metadata within fetch contexts
type fetchMetadataContextKey struct{}

// NewContext returns a context.Context preseeded for FetchWithContext use,
// with metadata keys pre-created
func NewContext() context.Context {
	return WithMetadata(context.Background())
}

// WithMetadata returns a copy of parent which FetchWithContext will record
// attempt metadata into
func WithMetadata(parent context.Context) context.Context {
	return context.WithValue(parent, fetchMetadataContextKey{}, new(fetchMetadata))
}

func getFetchMetadata(ctx context.Context) (*fetchMetadata, bool) {
	v := ctx.Value(fetchMetadataContextKey{})

	ptr, ok := v.(*fetchMetadata)

	return ptr, ok
}

// NumberOfAttemptsFromContext returns the number of network attempts the last
// fetch made with ctx, whether or not it succeeded
func NumberOfAttemptsFromContext(ctx context.Context) (int, bool) {
	md, ok := getFetchMetadata(ctx)
	if !ok {
		return 0, false
	}

	return md.attempts, true
}

// NumberOfRetriesFromContext returns the number of backoff waits the last
// fetch made with ctx scheduled
func NumberOfRetriesFromContext(ctx context.Context) (int, bool) {
	md, ok := getFetchMetadata(ctx)
	if !ok {
		return 0, false
	}

	return md.retries, true
}

// SuccessfulRequestDurationFromContext returns how long the successful attempt
// took, or zero when there wasn't one
func SuccessfulRequestDurationFromContext(ctx context.Context) (time.Duration, bool) {
	md, ok := getFetchMetadata(ctx)
	if !ok {
		return 0, false
	}

	return md.successfulDuration, true
}
