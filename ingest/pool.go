package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is the settled result of one task: either a value or an error.
type Outcome[T any] struct {
	Value T
	Err   error
}

// RunBounded runs every task with at most limit in flight at any instant and
// returns their outcomes index-aligned with the input. A task failure never
// cancels its siblings; the function returns only after every task has
// settled. Completion order is unconstrained.
func RunBounded[T any](ctx context.Context, tasks []func(context.Context) (T, error), limit int) []Outcome[T] {
	if limit <= 0 {
		limit = 1
	}

	outcomes := make([]Outcome[T], len(tasks))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, task := range tasks {
		g.Go(func() error {
			v, err := task(ctx)
			outcomes[i] = Outcome[T]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
