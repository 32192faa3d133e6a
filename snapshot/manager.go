// Package snapshot acquires a prebuilt snapshot file through a
// priority-ordered fallback chain: keep the existing file, download from
// candidate URLs in order, or copy a bundled file. All writes go to a
// temporary file in the destination directory followed by an atomic rename,
// so concurrent readers see either the old complete file or the new one.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwieczorek/docsnap"
	"golang.org/x/sync/singleflight"
)

// MinSnapshotSize is the smallest byte size accepted for a snapshot file.
// It is a cheap guard against empty or truncated files, not a content
// validator.
const MinSnapshotSize = 64

// Source identifies which fallback produced the snapshot.
type Source string

// Source values, in fallback priority order.
const (
	SourceExisting Source = "existing"
	SourceDownload Source = "download"
	SourceBundled  Source = "bundled-copy"
)

// Result is the outcome of one acquisition call.
type Result struct {
	Path      string
	Changed   bool
	Source    Source
	ByteSize  int64
	SourceURL string // set only when Source is SourceDownload
}

// EventType indicates the type of acquisition event.
type EventType int

const (
	EventStart EventType = iota
	EventSkipExisting
	EventDownloadAttempt
	EventDownloadFailed
	EventDownloadSuccess
	EventCopyAttempt
	EventCopySuccess
)

// Event reports acquisition progress.
type Event struct {
	Type EventType
	URL  string
	Path string
	Err  error
}

// EventFunc is a callback for acquisition events.
type EventFunc func(Event)

// Config holds the acquisition sources. Environment variables are read at
// the caller's boundary and translated into this struct; the Manager itself
// never consults ambient state.
type Config struct {
	// SourceURLs are download candidates, tried in order.
	SourceURLs []string

	// BundledDirs are local directories that may hold a bundled copy of the
	// snapshot, tried in order after every download candidate fails.
	BundledDirs []string

	// MinSize overrides MinSnapshotSize when positive.
	MinSize int64
}

// Options configures a single Ensure call.
type Options struct {
	// Force re-acquires the snapshot even when a valid file already exists.
	Force bool

	// SourceURLs overrides the configured download candidates when non-empty.
	SourceURLs []string

	// BundledDirs overrides the configured bundled directories when non-empty.
	BundledDirs []string

	// OnEvent receives acquisition events, if set.
	OnEvent EventFunc
}

// Manager ensures a valid snapshot file exists at a destination path.
// Concurrent calls for the same destination share a single underlying
// attempt; every caller receives the same result or error, and the in-flight
// entry is cleared once the attempt settles so a later call can retry.
type Manager struct {
	fetcher docsnap.Fetcher
	cfg     Config
	group   singleflight.Group
}

// NewManager creates a Manager that downloads with fetcher.
func NewManager(fetcher docsnap.Fetcher, cfg Config) *Manager {
	return &Manager{
		fetcher: fetcher,
		cfg:     cfg,
	}
}

// Ensure makes sure a valid snapshot exists at dest and reports how it got
// there. Coalesced callers share the first caller's options.
func (m *Manager) Ensure(ctx context.Context, dest string, opts Options) (*Result, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, docsnap.Errorf(docsnap.EINVALID, "invalid destination path %s: %v", dest, err)
	}

	v, err, _ := m.group.Do(abs, func() (any, error) {
		return m.ensure(ctx, abs, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (m *Manager) ensure(ctx context.Context, dest string, opts Options) (*Result, error) {
	emit := opts.OnEvent
	if emit == nil {
		emit = func(Event) {}
	}
	minSize := m.cfg.MinSize
	if minSize <= 0 {
		minSize = MinSnapshotSize
	}

	emit(Event{Type: EventStart, Path: dest})

	if !opts.Force {
		if fi, err := os.Stat(dest); err == nil && fi.Size() >= minSize {
			emit(Event{Type: EventSkipExisting, Path: dest})
			return &Result{
				Path:     dest,
				Changed:  false,
				Source:   SourceExisting,
				ByteSize: fi.Size(),
			}, nil
		}
	}

	var reasons []string

	urls := opts.SourceURLs
	if len(urls) == 0 {
		urls = m.cfg.SourceURLs
	}
	for _, u := range urls {
		emit(Event{Type: EventDownloadAttempt, URL: u})
		body, err := m.fetcher.Fetch(ctx, u)
		if err == nil && int64(len(body)) < minSize {
			err = docsnap.Errorf(docsnap.EFORMAT, "payload is %d bytes, below the %d-byte minimum", len(body), minSize)
		}
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %v", u, err))
			emit(Event{Type: EventDownloadFailed, URL: u, Err: err})
			continue
		}
		if err := writeAtomic(dest, body); err != nil {
			return nil, err
		}
		emit(Event{Type: EventDownloadSuccess, URL: u, Path: dest})
		return &Result{
			Path:      dest,
			Changed:   true,
			Source:    SourceDownload,
			ByteSize:  int64(len(body)),
			SourceURL: u,
		}, nil
	}

	dirs := opts.BundledDirs
	if len(dirs) == 0 {
		dirs = m.cfg.BundledDirs
	}
	for _, dir := range dirs {
		src := filepath.Join(dir, filepath.Base(dest))
		emit(Event{Type: EventCopyAttempt, Path: src})
		body, err := os.ReadFile(src)
		if err == nil && int64(len(body)) < minSize {
			err = docsnap.Errorf(docsnap.EFORMAT, "bundled file is %d bytes, below the %d-byte minimum", len(body), minSize)
		}
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %v", src, err))
			continue
		}
		if err := writeAtomic(dest, body); err != nil {
			return nil, err
		}
		emit(Event{Type: EventCopySuccess, Path: dest})
		return &Result{
			Path:     dest,
			Changed:  true,
			Source:   SourceBundled,
			ByteSize: int64(len(body)),
		}, nil
	}

	detail := "no sources configured"
	if len(reasons) > 0 {
		detail = strings.Join(reasons, "; ")
	}
	return nil, docsnap.Errorf(docsnap.EUNAVAILABLE,
		"no snapshot available for %s (%s); run \"docsnap refresh\" to rebuild it from the live index", dest, detail)
}

// writeAtomic writes data to a temporary file in dest's directory and
// renames it over dest. Rename within one directory is atomic, so a reader
// never observes a partially written snapshot.
func writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return docsnap.Errorf(docsnap.EINTERNAL, "creating temp file for %s: %v", dest, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return docsnap.Errorf(docsnap.EINTERNAL, "writing temp file for %s: %v", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return docsnap.Errorf(docsnap.EINTERNAL, "closing temp file for %s: %v", dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return docsnap.Errorf(docsnap.EINTERNAL, "replacing %s: %v", dest, err)
	}
	return nil
}
