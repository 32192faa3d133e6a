package index

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/mwieczorek/docsnap"
)

// Ensure Client implements docsnap.IndexClient at compile time.
var _ docsnap.IndexClient = (*Client)(nil)

// Client retrieves and decodes index resources from a single base URL.
// Retry behavior belongs to the injected Fetcher; the Client only decodes.
type Client struct {
	baseURL string
	fetcher docsnap.Fetcher
}

// NewClient creates a Client for the index published under baseURL.
func NewClient(baseURL string, fetcher docsnap.Fetcher) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
	}
}

// EntryPointURL returns the URL of the JSON discovery document.
func (c *Client) EntryPointURL() string {
	return c.baseURL + "/pagefind-entry.json"
}

// PageIndexURL returns the URL of the binary page manifest for a language.
func (c *Client) PageIndexURL(langHash string) string {
	return fmt.Sprintf("%s/pagefind.%s.pf_meta", c.baseURL, langHash)
}

// FragmentURL returns the URL of the binary fragment resource for a page hash.
func (c *Client) FragmentURL(hash string) string {
	return fmt.Sprintf("%s/fragment/%s.pf_fragment", c.baseURL, hash)
}

// FetchEntryPoint retrieves the discovery document.
func (c *Client) FetchEntryPoint(ctx context.Context) (*docsnap.EntryPoint, error) {
	body, err := c.fetcher.Fetch(ctx, c.EntryPointURL())
	if err != nil {
		return nil, err
	}

	var raw struct {
		Version   string `json:"version"`
		Languages map[string]struct {
			Hash      string `json:"hash"`
			Wasm      string `json:"wasm"`
			PageCount int    `json:"page_count"`
		} `json:"languages"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, docsnap.Errorf(docsnap.EFORMAT, "entry point is not valid JSON (the upstream index format may have changed): %v", err)
	}

	ep := &docsnap.EntryPoint{
		Version:   raw.Version,
		Languages: make(map[string]docsnap.LanguageIndex, len(raw.Languages)),
	}
	for lang, li := range raw.Languages {
		ep.Languages[lang] = docsnap.LanguageIndex{
			Hash:      li.Hash,
			WasmHash:  li.Wasm,
			PageCount: li.PageCount,
		}
	}
	return ep, nil
}

// FetchPageIndex retrieves the page manifest for a language and decodes it.
// The manifest is a framed CBOR array [version, pages, ...] where each page
// entry is [hash, wordCount]. The shape is validated element by element so a
// silent upstream format change surfaces as EFORMAT, not a generic decode
// error.
func (c *Client) FetchPageIndex(ctx context.Context, langHash string) ([]docsnap.PageRef, error) {
	body, err := c.fetcher.Fetch(ctx, c.PageIndexURL(langHash))
	if err != nil {
		return nil, err
	}

	payload, err := DecodeFrame(body)
	if err != nil {
		return nil, err
	}

	var manifest []cbor.RawMessage
	if err := cbor.Unmarshal(payload, &manifest); err != nil {
		return nil, docsnap.Errorf(docsnap.EFORMAT, "page manifest is not a CBOR array (the upstream index format may have changed): %v", err)
	}
	if len(manifest) < 2 {
		return nil, docsnap.Errorf(docsnap.EFORMAT, "page manifest has %d elements, want at least 2 (version, pages)", len(manifest))
	}

	var entries []cbor.RawMessage
	if err := cbor.Unmarshal(manifest[1], &entries); err != nil {
		return nil, docsnap.Errorf(docsnap.EFORMAT, "page manifest pages element is not an array (the upstream index format may have changed): %v", err)
	}

	refs := make([]docsnap.PageRef, 0, len(entries))
	for i, entry := range entries {
		var fields []cbor.RawMessage
		if err := cbor.Unmarshal(entry, &fields); err != nil || len(fields) < 2 {
			return nil, docsnap.Errorf(docsnap.EFORMAT, "page manifest entry %d is not a [hash, wordCount] pair (the upstream index format may have changed)", i)
		}
		var ref docsnap.PageRef
		if err := cbor.Unmarshal(fields[0], &ref.Hash); err != nil {
			return nil, docsnap.Errorf(docsnap.EFORMAT, "page manifest entry %d hash is not a string: %v", i, err)
		}
		if err := cbor.Unmarshal(fields[1], &ref.WordCount); err != nil {
			return nil, docsnap.Errorf(docsnap.EFORMAT, "page manifest entry %d word count is not an integer: %v", i, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// FetchFragment retrieves one page fragment and maps it to a PageRecord.
// The record's Meta holds the fragment's filters and anchors plus every
// fragment-meta field except title, which maps to the Title field.
func (c *Client) FetchFragment(ctx context.Context, hash string) (*docsnap.PageRecord, error) {
	body, err := c.fetcher.Fetch(ctx, c.FragmentURL(hash))
	if err != nil {
		return nil, err
	}

	payload, err := DecodeFrame(body)
	if err != nil {
		return nil, err
	}

	var frag struct {
		URL       string         `json:"url"`
		Content   string         `json:"content"`
		WordCount int            `json:"word_count"`
		Filters   map[string]any `json:"filters"`
		Meta      map[string]any `json:"meta"`
		Anchors   []any          `json:"anchors"`
	}
	if err := json.Unmarshal(payload, &frag); err != nil {
		return nil, docsnap.Errorf(docsnap.EFORMAT, "fragment %s is not valid JSON (the upstream index format may have changed): %v", hash, err)
	}
	if frag.URL == "" {
		return nil, docsnap.Errorf(docsnap.EFORMAT, "fragment %s has no url field (the upstream index format may have changed)", hash)
	}

	rec := &docsnap.PageRecord{
		URL:       frag.URL,
		Content:   frag.Content,
		WordCount: frag.WordCount,
		Meta:      make(map[string]any),
		FetchedAt: time.Now().UTC(),
	}
	for k, v := range frag.Meta {
		if k == "title" {
			if title, ok := v.(string); ok {
				rec.Title = title
			}
			continue
		}
		rec.Meta[k] = v
	}
	if frag.Filters != nil {
		rec.Meta["filters"] = frag.Filters
	}
	if frag.Anchors != nil {
		rec.Meta["anchors"] = frag.Anchors
	}
	return rec, nil
}
