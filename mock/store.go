package mock

import (
	"context"

	"github.com/mwieczorek/docsnap"
)

var _ docsnap.ColumnStore = (*ColumnStore)(nil)

// ColumnStore is a mock implementation of docsnap.ColumnStore.
type ColumnStore struct {
	ReplaceFn     func(ctx context.Context, dest string, rows []*docsnap.PageRecord) error
	ReadColumnsFn func(ctx context.Context, dest string, columns []string, offset, limit int) ([]*docsnap.PageRecord, error)
	FindByURLFn   func(ctx context.Context, dest string, url string) (*docsnap.PageRecord, error)
}

func (s *ColumnStore) Replace(ctx context.Context, dest string, rows []*docsnap.PageRecord) error {
	return s.ReplaceFn(ctx, dest, rows)
}

func (s *ColumnStore) ReadColumns(ctx context.Context, dest string, columns []string, offset, limit int) ([]*docsnap.PageRecord, error) {
	return s.ReadColumnsFn(ctx, dest, columns, offset, limit)
}

func (s *ColumnStore) FindByURL(ctx context.Context, dest string, url string) (*docsnap.PageRecord, error) {
	return s.FindByURLFn(ctx, dest, url)
}
