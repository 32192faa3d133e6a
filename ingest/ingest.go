// Package ingest orchestrates the full materialization of a documentation
// corpus: discover the index entry point, enumerate page hashes, fetch every
// fragment with bounded concurrency, and persist the result in a single
// snapshot write.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mwieczorek/docsnap"
)

// Defaults for the fetch phase.
const (
	DefaultConcurrency   = 15
	DefaultProgressEvery = 100
)

// Ingester runs full ingestion passes against a search index.
type Ingester struct {
	Client docsnap.IndexClient
	Store  docsnap.ColumnStore

	// Concurrency bounds the number of fragment fetches in flight.
	// Defaults to DefaultConcurrency.
	Concurrency int

	// ProgressEvery is the completion cadence for progress events.
	// Defaults to DefaultProgressEvery.
	ProgressEvery int

	// RunDeadline bounds the wall time of a whole run. Zero means no
	// deadline; per-request retry exhaustion is then the effective timeout.
	RunDeadline time.Duration
}

// Result holds the outcome of one ingestion run, the only externally
// visible summary.
type Result struct {
	RunID           string
	TotalPages      int
	FetchedPages    int
	FailedURLs      []FailedURL
	DestinationPath string
}

// FailedURL identifies a page that could not be fetched.
type FailedURL struct {
	URL    string
	Reason string
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	// ProgressDiscovered reports the total page count after enumeration.
	ProgressDiscovered ProgressType = iota
	// ProgressFetched reports completions at the configured cadence.
	ProgressFetched
	// ProgressPageFailed reports one page's terminal fetch failure.
	ProgressPageFailed
	// ProgressFinished reports that the run settled and the snapshot was
	// written.
	ProgressFinished
)

// ProgressEvent reports progress during an ingestion run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Err       error
}

// ProgressFunc is a callback for reporting ingestion progress. Events are
// emitted one at a time, strictly before IngestAll returns.
type ProgressFunc func(ProgressEvent)

// IngestAll materializes the whole corpus into the snapshot at dest.
// Per-page fetch failures are collected into the result, never thrown; only
// discovery and enumeration failures, and the final snapshot write, are
// fatal.
func (ing *Ingester) IngestAll(ctx context.Context, dest string, progress ProgressFunc) (*Result, error) {
	if ing.RunDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ing.RunDeadline)
		defer cancel()
	}

	// Discover.
	ep, err := ing.Client.FetchEntryPoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("entry point: %w", err)
	}
	lang, li, err := pickLanguage(ep)
	if err != nil {
		return nil, err
	}

	// Enumerate.
	refs, err := ing.Client.FetchPageIndex(ctx, li.Hash)
	if err != nil {
		return nil, fmt.Errorf("page index for language %s: %w", lang, err)
	}
	total := len(refs)

	var mu sync.Mutex
	emit := func(ev ProgressEvent) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		progress(ev)
	}

	emit(ProgressEvent{Type: ProgressDiscovered, Total: total})

	// Fetch all.
	every := ing.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}
	var completed atomic.Int64

	tasks := make([]func(context.Context) (*docsnap.PageRecord, error), len(refs))
	for i, ref := range refs {
		tasks[i] = func(ctx context.Context) (*docsnap.PageRecord, error) {
			rec, err := ing.Client.FetchFragment(ctx, ref.Hash)
			n := int(completed.Add(1))
			if err != nil {
				emit(ProgressEvent{
					Type:      ProgressPageFailed,
					Completed: n,
					Total:     total,
					URL:       ing.Client.FragmentURL(ref.Hash),
					Err:       err,
				})
				return nil, err
			}
			if n%every == 0 || n == total {
				emit(ProgressEvent{
					Type:      ProgressFetched,
					Completed: n,
					Total:     total,
					URL:       rec.URL,
				})
			}
			return rec, nil
		}
	}

	concurrency := ing.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	outcomes := RunBounded(ctx, tasks, concurrency)

	// Aggregate.
	records := make([]*docsnap.PageRecord, 0, len(outcomes))
	var failed []FailedURL
	for i, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, FailedURL{
				URL:    ing.Client.FragmentURL(refs[i].Hash),
				Reason: o.Err.Error(),
			})
			continue
		}
		records = append(records, o.Value)
	}

	// Persist in a single write; atomic replacement is the store's job.
	if err := ing.Store.Replace(ctx, dest, records); err != nil {
		return nil, fmt.Errorf("writing snapshot %s: %w", dest, err)
	}

	emit(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	return &Result{
		RunID:           uuid.New().String(),
		TotalPages:      total,
		FetchedPages:    len(records),
		FailedURLs:      failed,
		DestinationPath: dest,
	}, nil
}

// pickLanguage selects the language entry to ingest. Only one language is
// expected in practice; when several are present the lexicographically first
// wins, so the choice is deterministic.
func pickLanguage(ep *docsnap.EntryPoint) (string, docsnap.LanguageIndex, error) {
	if len(ep.Languages) == 0 {
		return "", docsnap.LanguageIndex{}, docsnap.Errorf(docsnap.ENOTFOUND, "index entry point lists no languages; nothing to ingest")
	}
	langs := make([]string, 0, len(ep.Languages))
	for lang := range ep.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs[0], ep.Languages[langs[0]], nil
}
