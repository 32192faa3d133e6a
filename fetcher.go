package docsnap

import "context"

// Fetcher retrieves raw bytes from URLs. Implementations hide transport
// concerns: status classification, retries, and rate limiting.
type Fetcher interface {
	// Fetch performs a GET and returns the response body.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Close releases transport resources.
	Close() error
}
