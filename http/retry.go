package http

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mwieczorek/docsnap"
)

// Retry defaults: 3 retries (4 total attempts), 1s base delay doubling per
// attempt with ±25% jitter so many concurrently failing fetches don't retry
// in lockstep.
const (
	DefaultMaxRetries      = 3
	DefaultInitialInterval = 1 * time.Second
	retryMultiplier        = 2.0
	retryJitter            = 0.25
)

// Ensure RetryingFetcher implements docsnap.Fetcher at compile time.
var _ docsnap.Fetcher = (*RetryingFetcher)(nil)

// RetryingFetcher wraps a Fetcher with exponential backoff for transient
// failures: transport errors and 5xx responses. A non-5xx protocol failure
// (e.g. 404) means the resource is genuinely absent and fails immediately.
type RetryingFetcher struct {
	next            docsnap.Fetcher
	maxRetries      uint64
	initialInterval time.Duration
}

// RetryOption configures a RetryingFetcher.
type RetryOption func(*RetryingFetcher)

// WithMaxRetries sets the number of retries after the initial attempt.
func WithMaxRetries(n uint64) RetryOption {
	return func(f *RetryingFetcher) {
		f.maxRetries = n
	}
}

// WithInitialInterval sets the base backoff delay. Useful for testing
// without waiting for real delays.
func WithInitialInterval(d time.Duration) RetryOption {
	return func(f *RetryingFetcher) {
		f.initialInterval = d
	}
}

// NewRetryingFetcher wraps next with the default retry policy.
func NewRetryingFetcher(next docsnap.Fetcher, opts ...RetryOption) *RetryingFetcher {
	f := &RetryingFetcher{
		next:            next,
		maxRetries:      DefaultMaxRetries,
		initialInterval: DefaultInitialInterval,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retries the wrapped fetch until it succeeds, fails terminally, or
// retries are exhausted.
func (f *RetryingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialInterval
	b.Multiplier = retryMultiplier
	b.RandomizationFactor = retryJitter
	b.MaxInterval = 1 * time.Minute
	b.MaxElapsedTime = 0 // bounded by max retries, not wall time

	var body []byte
	operation := func() error {
		var err error
		body, err = f.next.Fetch(ctx, url)
		if err == nil {
			return nil
		}
		if !docsnap.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, f.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// Close closes the wrapped fetcher.
func (f *RetryingFetcher) Close() error {
	return f.next.Close()
}
