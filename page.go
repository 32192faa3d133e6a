package docsnap

import (
	"context"
	"time"
)

// PageRecord is one fully materialized documentation page. Records are keyed
// by URL within a snapshot; re-fetching the same URL overwrites every other
// field (last-write-wins, no merge).
type PageRecord struct {
	URL       string         `json:"url"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	WordCount int            `json:"wordCount"`
	Meta      map[string]any `json:"meta"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *PageRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "page record URL required")
	}
	return nil
}

// PageRef identifies one page in the index manifest: the content hash that
// addresses its fragment resource plus the word count the manifest advertises.
// The hash names the remote resource only; it is not persisted in PageRecord.
type PageRef struct {
	Hash      string
	WordCount int
}

// LanguageIndex describes one language's index as advertised by the entry
// point document.
type LanguageIndex struct {
	Hash      string
	WasmHash  string
	PageCount int
}

// EntryPoint is the index's top-level discovery document.
type EntryPoint struct {
	Version   string
	Languages map[string]LanguageIndex
}

// IndexClient speaks the search index publishing protocol: a JSON entry
// point, a CBOR page manifest per language, and one JSON fragment per page,
// the latter two wrapped in the gzip-plus-header binary frame.
type IndexClient interface {
	// FetchEntryPoint retrieves the discovery document listing available
	// languages and their index hashes.
	FetchEntryPoint(ctx context.Context) (*EntryPoint, error)

	// FetchPageIndex retrieves the ordered list of page references for the
	// language index identified by langHash.
	FetchPageIndex(ctx context.Context, langHash string) ([]PageRef, error)

	// FetchFragment retrieves and decodes the page fragment addressed by
	// hash. FetchedAt is set to the time of the fetch.
	FetchFragment(ctx context.Context, hash string) (*PageRecord, error)

	// FragmentURL returns the remote resource URL for a fragment hash.
	// It is deterministic and performs no I/O, so failed pages can be
	// identified even when the fragment body was never retrieved.
	FragmentURL(hash string) string
}
