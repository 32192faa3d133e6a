package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwieczorek/docsnap"
	"github.com/mwieczorek/docsnap/ingest"
	"github.com/mwieczorek/docsnap/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient serves a fixed manifest of fragments keyed by hash. A nil
// record means the fragment fetch fails with a 404.
func newTestClient(refs []docsnap.PageRef, fragments map[string]*docsnap.PageRecord) *mock.IndexClient {
	return &mock.IndexClient{
		FetchEntryPointFn: func(ctx context.Context) (*docsnap.EntryPoint, error) {
			return &docsnap.EntryPoint{
				Version: "1.3.0",
				Languages: map[string]docsnap.LanguageIndex{
					"en": {Hash: "en_abc123", PageCount: len(refs)},
				},
			}, nil
		},
		FetchPageIndexFn: func(ctx context.Context, langHash string) ([]docsnap.PageRef, error) {
			return refs, nil
		},
		FetchFragmentFn: func(ctx context.Context, hash string) (*docsnap.PageRecord, error) {
			rec, ok := fragments[hash]
			if !ok || rec == nil {
				return nil, docsnap.StatusErrorf(404, "HTTP 404 Not Found for fragment %s", hash)
			}
			return rec, nil
		},
	}
}

func record(url string) *docsnap.PageRecord {
	return &docsnap.PageRecord{
		URL:       url,
		Title:     "Title of " + url,
		Content:   "content",
		WordCount: 1,
		FetchedAt: time.Now().UTC(),
	}
}

func TestIngester_IngestAll(t *testing.T) {
	t.Parallel()

	t.Run("fetches every page and writes the snapshot once", func(t *testing.T) {
		t.Parallel()

		refs := []docsnap.PageRef{{Hash: "page_x", WordCount: 10}, {Hash: "page_y", WordCount: 20}}
		client := newTestClient(refs, map[string]*docsnap.PageRecord{
			"page_x": record("/docs/x"),
			"page_y": record("/docs/y"),
		})

		var writes int
		var written []*docsnap.PageRecord
		store := &mock.ColumnStore{
			ReplaceFn: func(ctx context.Context, dest string, rows []*docsnap.PageRecord) error {
				writes++
				written = rows
				assert.Equal(t, "/tmp/docs.db", dest)
				return nil
			},
		}

		ing := &ingest.Ingester{Client: client, Store: store}
		res, err := ing.IngestAll(context.Background(), "/tmp/docs.db", nil)
		require.NoError(t, err)

		assert.Equal(t, 2, res.TotalPages)
		assert.Equal(t, 2, res.FetchedPages)
		assert.Empty(t, res.FailedURLs)
		assert.Equal(t, "/tmp/docs.db", res.DestinationPath)
		assert.NotEmpty(t, res.RunID)
		assert.Equal(t, 1, writes, "the snapshot must be written exactly once")
		require.Len(t, written, 2)
		assert.Equal(t, "/docs/x", written[0].URL)
		assert.Equal(t, "/docs/y", written[1].URL)
	})

	t.Run("one bad page never aborts the run", func(t *testing.T) {
		t.Parallel()

		refs := []docsnap.PageRef{{Hash: "good_1"}, {Hash: "bad_1"}, {Hash: "good_2"}}
		client := newTestClient(refs, map[string]*docsnap.PageRecord{
			"good_1": record("/docs/one"),
			"good_2": record("/docs/two"),
		})
		store := &mock.ColumnStore{
			ReplaceFn: func(ctx context.Context, dest string, rows []*docsnap.PageRecord) error {
				assert.Len(t, rows, 2)
				return nil
			},
		}

		ing := &ingest.Ingester{Client: client, Store: store}
		res, err := ing.IngestAll(context.Background(), "/tmp/docs.db", nil)
		require.NoError(t, err)

		assert.Equal(t, 3, res.TotalPages)
		assert.Equal(t, 2, res.FetchedPages)
		require.Len(t, res.FailedURLs, 1)
		assert.Equal(t, client.FragmentURL("bad_1"), res.FailedURLs[0].URL)
		assert.Contains(t, res.FailedURLs[0].Reason, "404")
	})

	t.Run("no languages is fatal", func(t *testing.T) {
		t.Parallel()

		client := &mock.IndexClient{
			FetchEntryPointFn: func(ctx context.Context) (*docsnap.EntryPoint, error) {
				return &docsnap.EntryPoint{Languages: map[string]docsnap.LanguageIndex{}}, nil
			},
		}
		ing := &ingest.Ingester{Client: client, Store: &mock.ColumnStore{}}

		_, err := ing.IngestAll(context.Background(), "/tmp/docs.db", nil)
		require.Error(t, err)
		assert.Equal(t, docsnap.ENOTFOUND, docsnap.ErrorCode(err))
	})

	t.Run("page index failure is fatal", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(nil, nil)
		client.FetchPageIndexFn = func(ctx context.Context, langHash string) ([]docsnap.PageRef, error) {
			return nil, docsnap.Errorf(docsnap.ETRANSPORT, "connection refused")
		}
		ing := &ingest.Ingester{Client: client, Store: &mock.ColumnStore{}}

		_, err := ing.IngestAll(context.Background(), "/tmp/docs.db", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "page index")
	})

	t.Run("snapshot write failure is fatal", func(t *testing.T) {
		t.Parallel()

		refs := []docsnap.PageRef{{Hash: "page_x"}}
		client := newTestClient(refs, map[string]*docsnap.PageRecord{"page_x": record("/docs/x")})
		store := &mock.ColumnStore{
			ReplaceFn: func(ctx context.Context, dest string, rows []*docsnap.PageRecord) error {
				return errors.New("disk full")
			},
		}
		ing := &ingest.Ingester{Client: client, Store: store}

		_, err := ing.IngestAll(context.Background(), "/tmp/docs.db", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("emits discovery first, finished last, failures in between", func(t *testing.T) {
		t.Parallel()

		refs := []docsnap.PageRef{{Hash: "good_1"}, {Hash: "bad_1"}}
		client := newTestClient(refs, map[string]*docsnap.PageRecord{"good_1": record("/docs/one")})
		store := &mock.ColumnStore{
			ReplaceFn: func(ctx context.Context, dest string, rows []*docsnap.PageRecord) error {
				return nil
			},
		}

		var events []ingest.ProgressEvent
		ing := &ingest.Ingester{Client: client, Store: store, ProgressEvery: 1}
		_, err := ing.IngestAll(context.Background(), "/tmp/docs.db", func(ev ingest.ProgressEvent) {
			events = append(events, ev)
		})
		require.NoError(t, err)

		require.NotEmpty(t, events)
		assert.Equal(t, ingest.ProgressDiscovered, events[0].Type)
		assert.Equal(t, 2, events[0].Total)
		assert.Equal(t, ingest.ProgressFinished, events[len(events)-1].Type)

		var failures int
		for _, ev := range events {
			if ev.Type == ingest.ProgressPageFailed {
				failures++
				assert.Equal(t, client.FragmentURL("bad_1"), ev.URL)
				assert.Error(t, ev.Err)
			}
		}
		assert.Equal(t, 1, failures)
	})

	t.Run("picks the lexicographically first language", func(t *testing.T) {
		t.Parallel()

		var requested string
		client := &mock.IndexClient{
			FetchEntryPointFn: func(ctx context.Context) (*docsnap.EntryPoint, error) {
				return &docsnap.EntryPoint{
					Languages: map[string]docsnap.LanguageIndex{
						"pt": {Hash: "pt_hash"},
						"en": {Hash: "en_hash"},
					},
				}, nil
			},
			FetchPageIndexFn: func(ctx context.Context, langHash string) ([]docsnap.PageRef, error) {
				requested = langHash
				return nil, nil
			},
		}
		store := &mock.ColumnStore{
			ReplaceFn: func(ctx context.Context, dest string, rows []*docsnap.PageRecord) error {
				return nil
			},
		}
		ing := &ingest.Ingester{Client: client, Store: store}

		_, err := ing.IngestAll(context.Background(), "/tmp/docs.db", nil)
		require.NoError(t, err)
		assert.Equal(t, "en_hash", requested)
	})
}
