package main

import (
	"fmt"

	"github.com/mwieczorek/docsnap"
)

// previewLen bounds content output when --full is not set.
const previewLen = 200

// Run executes the lookup command.
func (c *LookupCmd) Run(deps *Dependencies) error {
	dest := deps.snapshotPath(c.Path)

	rec, err := deps.Store.FindByURL(deps.Ctx, dest, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsnap.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s\n", rec.Title)
	fmt.Fprintf(deps.Stdout, "url: %s\n", rec.URL)
	fmt.Fprintf(deps.Stdout, "words: %d\n", rec.WordCount)
	fmt.Fprintf(deps.Stdout, "fetched: %s\n\n", rec.FetchedAt.Format("2006-01-02 15:04:05"))

	content := rec.Content
	if !c.Full && len(content) > previewLen {
		content = content[:previewLen] + "..."
	}
	fmt.Fprintln(deps.Stdout, content)

	return nil
}
