package main

import (
	"fmt"
	"os"

	"github.com/mwieczorek/docsnap"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	dest := deps.snapshotPath(c.Path)

	fi, err := os.Stat(dest)
	if err != nil {
		fmt.Fprintf(deps.Stdout, "Snapshot %s does not exist\n", dest)
		fmt.Fprintln(deps.Stdout, "Run \"docsnap snapshot\" to fetch a prebuilt one, or \"docsnap refresh\" to build it from the live index.")
		return nil
	}

	n, err := deps.Store.Count(deps.Ctx, dest)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsnap.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Snapshot %s\n", dest)
	fmt.Fprintf(deps.Stdout, "  pages: %d\n", n)
	fmt.Fprintf(deps.Stdout, "  bytes: %d\n", fi.Size())
	fmt.Fprintf(deps.Stdout, "  modified: %s\n", fi.ModTime().Format("2006-01-02 15:04:05"))

	return nil
}
