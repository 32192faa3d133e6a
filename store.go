package docsnap

import "context"

// ColumnStore persists page records to a durable snapshot file and serves
// selective reads from it. Replace receives the full record set in a single
// call and must swap the destination atomically: concurrent readers see
// either the old complete snapshot or the new one, never a partial write.
type ColumnStore interface {
	// Replace writes rows as the complete new content of the snapshot at
	// dest. Within a batch, a later duplicate URL wins over an earlier one.
	Replace(ctx context.Context, dest string, rows []*PageRecord) error

	// ReadColumns reads the requested columns for a row range, in snapshot
	// order. Unrequested fields are left at their zero values.
	// A limit <= 0 means no limit.
	ReadColumns(ctx context.Context, dest string, columns []string, offset, limit int) ([]*PageRecord, error)

	// FindByURL retrieves a single record by its URL.
	// Returns ENOTFOUND if no such record exists.
	FindByURL(ctx context.Context, dest string, url string) (*PageRecord, error)
}
