// Package http provides HTTP-based implementations of docsnap.Fetcher for
// retrieving index resources and snapshot payloads.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mwieczorek/docsnap"
	"golang.org/x/time/rate"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements docsnap.Fetcher at compile time.
var _ docsnap.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves raw bytes over HTTP and classifies failures: transport
// errors (connection refused, DNS, timeout) become ETRANSPORT, non-2xx
// responses become EPROTOCOL carrying the status code.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRateLimit caps outgoing requests at rps requests per second with a
// burst of 1. Zero or negative rps disables limiting.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewFetcher creates a new HTTP Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch performs a GET and returns the response body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, docsnap.Errorf(docsnap.EINVALID, "invalid request URL %s: %v", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, docsnap.Errorf(docsnap.ETRANSPORT, "request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, docsnap.StatusErrorf(resp.StatusCode, "HTTP %d %s for %s", resp.StatusCode, http.StatusText(resp.StatusCode), url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, docsnap.Errorf(docsnap.ETRANSPORT, "reading response from %s failed: %v", url, err)
	}

	return body, nil
}

// Close releases resources. For the HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
