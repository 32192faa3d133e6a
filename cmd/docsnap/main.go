package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	docsnaphttp "github.com/mwieczorek/docsnap/http"
	"github.com/mwieczorek/docsnap/snapshot"
	"github.com/mwieczorek/docsnap/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program. Environment variables are read here, once,
// and translated into explicit configuration; nothing below this boundary
// consults ambient state.
type Main struct {
	// DataDir holds the snapshot file. Set before calling Run().
	DataDir string

	// IndexURL is the default base URL of the search index.
	IndexURL string

	// SnapshotURLs are the default download candidates for prebuilt
	// snapshots, in priority order.
	SnapshotURLs []string
}

// NewMain returns a new instance of Main configured from the environment.
func NewMain() *Main {
	// A .env file is optional; a missing one is not an error.
	_ = godotenv.Load()

	dataDir := os.Getenv("DOCSNAP_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}

	var snapshotURLs []string
	if raw := os.Getenv("DOCSNAP_SNAPSHOT_URLS"); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				snapshotURLs = append(snapshotURLs, u)
			}
		}
	}

	return &Main{
		DataDir:      dataDir,
		IndexURL:     os.Getenv("DOCSNAP_INDEX_URL"),
		SnapshotURLs: snapshotURLs,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	logLevel := slog.LevelWarn
	for _, a := range args {
		if a == "--verbose" || a == "-v" {
			logLevel = slog.LevelDebug
		}
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	fetcher := docsnaphttp.NewRetryingFetcher(docsnaphttp.NewFetcher())
	defer fetcher.Close()

	deps := &Dependencies{
		Ctx:             ctx,
		Stdout:          stdout,
		Stderr:          stderr,
		Logger:          logger,
		Fetcher:         fetcher,
		Store:           sqlite.NewStore(),
		DefaultIndexURL: m.IndexURL,
		SnapshotPath:    filepath.Join(m.DataDir, "docs.db"),
	}
	deps.Snapshots = snapshot.NewManager(fetcher, snapshot.Config{
		SourceURLs:  m.SnapshotURLs,
		BundledDirs: []string{filepath.Join(m.DataDir, "bundled")},
	})

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docsnap"),
		kong.Description("Materialize a documentation search index into a local snapshot"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docsnap --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	return kctx.Run(deps)
}
