package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/mwieczorek/docsnap"
)

// Compile-time interface verification.
var _ docsnap.ColumnStore = (*Store)(nil)

// Store implements docsnap.ColumnStore on SQLite. Replace builds a fresh
// database beside the destination and renames it into place, so a concurrent
// reader sees either the old snapshot or the new one, never a partial write.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// Replace writes rows as the complete new snapshot at dest. Rows are written
// in input order; a later duplicate URL replaces an earlier one.
func (s *Store) Replace(ctx context.Context, dest string, rows []*docsnap.PageRecord) error {
	tmp := dest + ".tmp"
	_ = os.Remove(tmp)

	db := NewDB(tmp)
	if err := db.Open(); err != nil {
		return err
	}

	if err := s.insertAll(ctx, db, rows); err != nil {
		db.Close()
		os.Remove(tmp)
		return err
	}

	if err := db.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return docsnap.Errorf(docsnap.EINTERNAL, "replacing snapshot %s: %v", dest, err)
	}
	return nil
}

func (s *Store) insertAll(ctx context.Context, db *DB, rows []*docsnap.PageRecord) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO pages (id, url, title, content, word_count, meta, content_hash, position, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}

		meta := "{}"
		if row.Meta != nil {
			raw, err := json.Marshal(row.Meta)
			if err != nil {
				return docsnap.Errorf(docsnap.EINVALID, "page %s meta is not serializable: %v", row.URL, err)
			}
			meta = string(raw)
		}

		fetchedAt := row.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}

		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), row.URL, row.Title, row.Content, row.WordCount,
			meta, hashContent(row.Content), pos, fetchedAt.Format(time.RFC3339),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// readableColumns are the column names ReadColumns accepts.
var readableColumns = map[string]bool{
	"url":        true,
	"title":      true,
	"content":    true,
	"word_count": true,
	"meta":       true,
	"fetched_at": true,
}

// ReadColumns reads the requested columns for a row range in snapshot order.
// Unrequested fields are left at their zero values.
func (s *Store) ReadColumns(ctx context.Context, dest string, columns []string, offset, limit int) ([]*docsnap.PageRecord, error) {
	if len(columns) == 0 {
		return nil, docsnap.Errorf(docsnap.EINVALID, "at least one column required")
	}
	for _, col := range columns {
		if !readableColumns[col] {
			return nil, docsnap.Errorf(docsnap.EINVALID, "unknown column %q", col)
		}
	}

	db, err := s.open(dest)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var query strings.Builder
	query.WriteString("SELECT ")
	query.WriteString(strings.Join(columns, ", "))
	query.WriteString(" FROM pages ORDER BY position")

	var args []any
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			query.WriteString(" LIMIT -1")
		}
		query.WriteString(" OFFSET ?")
		args = append(args, offset)
	}

	rows, err := db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*docsnap.PageRecord
	for rows.Next() {
		rec := &docsnap.PageRecord{}
		targets := make([]any, len(columns))
		var meta, fetchedAt sql.NullString
		for i, col := range columns {
			switch col {
			case "url":
				targets[i] = &rec.URL
			case "title":
				targets[i] = &rec.Title
			case "content":
				targets[i] = &rec.Content
			case "word_count":
				targets[i] = &rec.WordCount
			case "meta":
				targets[i] = &meta
			case "fetched_at":
				targets[i] = &fetchedAt
			}
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		if err := decodeAux(rec, meta, fetchedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FindByURL retrieves a single record by its URL.
func (s *Store) FindByURL(ctx context.Context, dest string, url string) (*docsnap.PageRecord, error) {
	db, err := s.open(dest)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rec := &docsnap.PageRecord{}
	var meta, fetchedAt sql.NullString
	err = db.QueryRowContext(ctx, `
		SELECT url, title, content, word_count, meta, fetched_at
		FROM pages
		WHERE url = ?
	`, url).Scan(&rec.URL, &rec.Title, &rec.Content, &rec.WordCount, &meta, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, docsnap.Errorf(docsnap.ENOTFOUND, "page %q not found in snapshot", url)
	}
	if err != nil {
		return nil, err
	}
	if err := decodeAux(rec, meta, fetchedAt); err != nil {
		return nil, err
	}
	return rec, nil
}

// Count returns the number of pages in the snapshot.
func (s *Store) Count(ctx context.Context, dest string) (int, error) {
	db, err := s.open(dest)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// open opens an existing snapshot for reading.
func (s *Store) open(dest string) (*DB, error) {
	if _, err := os.Stat(dest); err != nil {
		return nil, docsnap.Errorf(docsnap.ENOTFOUND, "snapshot %s does not exist; run \"docsnap snapshot\" or \"docsnap refresh\" first", dest)
	}
	db := NewDB(dest)
	if err := db.Open(); err != nil {
		return nil, err
	}
	return db, nil
}

// decodeAux fills a record's Meta and FetchedAt from their stored text forms.
func decodeAux(rec *docsnap.PageRecord, meta, fetchedAt sql.NullString) error {
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &rec.Meta); err != nil {
			return docsnap.Errorf(docsnap.EINTERNAL, "stored meta for %s is corrupt: %v", rec.URL, err)
		}
	}
	if fetchedAt.Valid && fetchedAt.String != "" {
		t, err := time.Parse(time.RFC3339, fetchedAt.String)
		if err != nil {
			return docsnap.Errorf(docsnap.EINTERNAL, "stored fetched_at for %s is corrupt: %v", rec.URL, err)
		}
		rec.FetchedAt = t
	}
	return nil
}
