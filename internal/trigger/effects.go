package trigger

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// task is one side effect of a transition. Best-effort tasks may fail
// without failing the invocation; the search gateway logs its own payloads
// on failure.
type task struct {
	name       string
	bestEffort bool
	run        func(ctx context.Context) error
}

// runAll executes the tasks concurrently and aggregates the outcome:
// best-effort failures are logged and dropped, everything else fails the
// invocation so the upstream feed can redeliver the event.
func runAll(ctx context.Context, tasks []task) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			err := t.run(ctx)
			if err == nil {
				return nil
			}
			if t.bestEffort {
				log.Printf("trigger: %s failed (ignored): %v", t.name, err)
				return nil
			}
			return fmt.Errorf("%s: %w", t.name, err)
		})
	}
	return g.Wait()
}
