package main

import (
	"fmt"

	"github.com/mwieczorek/docsnap"
	"github.com/mwieczorek/docsnap/index"
	"github.com/mwieczorek/docsnap/ingest"
	docsnapslog "github.com/mwieczorek/docsnap/slog"
)

// Run executes the refresh command: a full rescrape of the live index into
// the snapshot.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	indexURL := c.URL
	if indexURL == "" {
		indexURL = deps.DefaultIndexURL
	}
	if indexURL == "" {
		return fmt.Errorf("no index URL: pass one as an argument or set DOCSNAP_INDEX_URL")
	}

	dest := deps.snapshotPath(c.Path)

	fetcher := docsnapslog.NewLoggingFetcher(deps.Fetcher, deps.Logger)
	ing := &ingest.Ingester{
		Client:        index.NewClient(indexURL, fetcher),
		Store:         deps.Store,
		Concurrency:   c.Concurrency,
		ProgressEvery: c.Every,
	}

	logProgress := docsnapslog.ProgressLogger(deps.Logger)
	progress := func(ev ingest.ProgressEvent) {
		logProgress(ev)
		switch ev.Type {
		case ingest.ProgressDiscovered:
			fmt.Fprintf(deps.Stdout, "Found %d pages\n", ev.Total)
		case ingest.ProgressFetched:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] fetched\n", ev.Completed, ev.Total)
		case ingest.ProgressPageFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", ev.URL, docsnap.ErrorMessage(ev.Err))
		}
	}

	res, err := ing.IngestAll(deps.Ctx, dest, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsnap.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Snapshot %s: %d/%d pages fetched, %d failed\n",
		res.DestinationPath, res.FetchedPages, res.TotalPages, len(res.FailedURLs))
	if c.Failed {
		for _, f := range res.FailedURLs {
			fmt.Fprintf(deps.Stdout, "  failed %s: %s\n", f.URL, f.Reason)
		}
	}

	return nil
}
