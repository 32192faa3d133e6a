package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/mwieczorek/docsnap"
	"github.com/mwieczorek/docsnap/snapshot"
	"github.com/mwieczorek/docsnap/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Fetcher   docsnap.Fetcher
	Store     *sqlite.Store
	Snapshots *snapshot.Manager

	// DefaultIndexURL is used when refresh is invoked without a URL.
	DefaultIndexURL string

	// SnapshotPath is the default snapshot destination.
	SnapshotPath string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Refresh  RefreshCmd  `cmd:"" help:"Rebuild the snapshot by fetching every page from the live index"`
	Snapshot SnapshotCmd `cmd:"" help:"Ensure a valid snapshot exists, downloading or copying one if needed"`
	Lookup   LookupCmd   `cmd:"" help:"Print one page from the snapshot by URL"`
	Status   StatusCmd   `cmd:"" help:"Show snapshot file status"`

	Verbose bool `short:"v" help:"Enable debug logging"`
}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct {
	URL         string `arg:"" optional:"" help:"Base URL of the search index (defaults to DOCSNAP_INDEX_URL)"`
	Path        string `short:"p" help:"Snapshot destination path (defaults to the data directory)"`
	Concurrency int    `short:"c" default:"15" help:"Concurrent fragment fetch limit"`
	Every       int    `default:"100" help:"Progress report cadence in completed pages"`
	Failed      bool   `help:"List every failed URL in the summary"`
}

// SnapshotCmd is the "snapshot" subcommand.
type SnapshotCmd struct {
	Path       string   `short:"p" help:"Snapshot destination path (defaults to the data directory)"`
	Force      bool     `short:"f" help:"Re-acquire even if a valid snapshot exists"`
	URL        []string `short:"u" name:"url" help:"Download candidate URL (repeatable, tried in order)"`
	BundledDir []string `name:"bundled-dir" help:"Directory holding a bundled snapshot copy (repeatable)"`
}

// LookupCmd is the "lookup" subcommand.
type LookupCmd struct {
	URL  string `arg:"" help:"Page URL to look up"`
	Path string `short:"p" help:"Snapshot path (defaults to the data directory)"`
	Full bool   `help:"Print the full page content"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	Path string `short:"p" help:"Snapshot path (defaults to the data directory)"`
}

// snapshotPath resolves a command's path flag against the default.
func (d *Dependencies) snapshotPath(flag string) string {
	if flag != "" {
		return flag
	}
	return d.SnapshotPath
}
