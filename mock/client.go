package mock

import (
	"context"

	"github.com/mwieczorek/docsnap"
)

var _ docsnap.IndexClient = (*IndexClient)(nil)

// IndexClient is a mock implementation of docsnap.IndexClient.
type IndexClient struct {
	FetchEntryPointFn func(ctx context.Context) (*docsnap.EntryPoint, error)
	FetchPageIndexFn  func(ctx context.Context, langHash string) ([]docsnap.PageRef, error)
	FetchFragmentFn   func(ctx context.Context, hash string) (*docsnap.PageRecord, error)
	FragmentURLFn     func(hash string) string
}

func (c *IndexClient) FetchEntryPoint(ctx context.Context) (*docsnap.EntryPoint, error) {
	return c.FetchEntryPointFn(ctx)
}

func (c *IndexClient) FetchPageIndex(ctx context.Context, langHash string) ([]docsnap.PageRef, error) {
	return c.FetchPageIndexFn(ctx, langHash)
}

func (c *IndexClient) FetchFragment(ctx context.Context, hash string) (*docsnap.PageRecord, error) {
	return c.FetchFragmentFn(ctx, hash)
}

func (c *IndexClient) FragmentURL(hash string) string {
	if c.FragmentURLFn == nil {
		return "https://docs.example.com/fragment/" + hash + ".pf_fragment"
	}
	return c.FragmentURLFn(hash)
}
