package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwieczorek/docsnap"
	docsnaphttp "github.com/mwieczorek/docsnap/http"
	"github.com/mwieczorek/docsnap/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryingFetcher_RecoversFrom5xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	fetcher := docsnaphttp.NewRetryingFetcher(
		docsnaphttp.NewFetcher(),
		docsnaphttp.WithInitialInterval(10*time.Millisecond),
	)
	defer fetcher.Close()

	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("recovered"), body)
	assert.Equal(t, int64(3), calls.Load())
}

func TestRetryingFetcher_404FailsImmediately(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := docsnaphttp.NewRetryingFetcher(
		docsnaphttp.NewFetcher(),
		docsnaphttp.WithInitialInterval(10*time.Millisecond),
	)
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, docsnap.EPROTOCOL, docsnap.ErrorCode(err))
	assert.Equal(t, int64(1), calls.Load(), "terminal failures must not be retried")
}

func TestRetryingFetcher_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	fetcher := docsnaphttp.NewRetryingFetcher(
		&mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				calls.Add(1)
				return nil, docsnap.Errorf(docsnap.ETRANSPORT, "connection refused")
			},
		},
		docsnaphttp.WithInitialInterval(time.Millisecond),
	)

	_, err := fetcher.Fetch(context.Background(), "https://docs.example.com")
	require.Error(t, err)
	assert.Equal(t, docsnap.ETRANSPORT, docsnap.ErrorCode(err))
	assert.Equal(t, int64(4), calls.Load(), "3 retries means 4 total attempts")
}

func TestRetryingFetcher_DelaysGrowBetweenAttempts(t *testing.T) {
	t.Parallel()

	var timestamps []time.Time
	fetcher := docsnaphttp.NewRetryingFetcher(
		&mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				timestamps = append(timestamps, time.Now())
				return nil, docsnap.StatusErrorf(503, "HTTP 503")
			},
		},
		docsnaphttp.WithInitialInterval(40*time.Millisecond),
		docsnaphttp.WithMaxRetries(2),
	)

	_, err := fetcher.Fetch(context.Background(), "https://docs.example.com")
	require.Error(t, err)
	require.Len(t, timestamps, 3)

	// With a 40ms base, ±25% jitter and a 2x multiplier, the first gap is at
	// least 30ms and the second at least 60ms.
	assert.GreaterOrEqual(t, timestamps[1].Sub(timestamps[0]), 30*time.Millisecond)
	assert.GreaterOrEqual(t, timestamps[2].Sub(timestamps[1]), 60*time.Millisecond)
}

func TestRetryingFetcher_ContextCancelStopsRetrying(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	fetcher := docsnaphttp.NewRetryingFetcher(
		&mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				calls.Add(1)
				cancel()
				return nil, docsnap.Errorf(docsnap.ETRANSPORT, "connection reset")
			},
		},
		docsnaphttp.WithInitialInterval(time.Hour),
	)

	_, err := fetcher.Fetch(ctx, "https://docs.example.com")
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load())
}
