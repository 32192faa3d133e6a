package main

import (
	"fmt"

	"github.com/mwieczorek/docsnap"
	docsnapslog "github.com/mwieczorek/docsnap/slog"
	"github.com/mwieczorek/docsnap/snapshot"
)

// Run executes the snapshot command: the fast-path acquisition that never
// touches the live index.
func (c *SnapshotCmd) Run(deps *Dependencies) error {
	dest := deps.snapshotPath(c.Path)

	res, err := deps.Snapshots.Ensure(deps.Ctx, dest, snapshot.Options{
		Force:       c.Force,
		SourceURLs:  c.URL,
		BundledDirs: c.BundledDir,
		OnEvent:     docsnapslog.AcquisitionLogger(deps.Logger),
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsnap.ErrorMessage(err))
		return err
	}

	switch res.Source {
	case snapshot.SourceExisting:
		fmt.Fprintf(deps.Stdout, "Snapshot %s is valid (%d bytes)\n", res.Path, res.ByteSize)
	case snapshot.SourceDownload:
		fmt.Fprintf(deps.Stdout, "Snapshot %s downloaded from %s (%d bytes)\n", res.Path, res.SourceURL, res.ByteSize)
	case snapshot.SourceBundled:
		fmt.Fprintf(deps.Stdout, "Snapshot %s restored from bundled copy (%d bytes)\n", res.Path, res.ByteSize)
	}

	return nil
}
