package media

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/nexstacksg/property-stewards-app-sub001/checklist"
	"github.com/nexstacksg/property-stewards-app-sub001/observability"
)

// Prefetch resolves all photo references with bounded fan-out before the
// synchronous layout phase begins. Individual failures never abort the
// prefetch; the aggregated error is informational and the layout phase
// renders placeholders for whatever stayed unresolved.
func (r *Resolver) Prefetch(ctx context.Context, refs []checklist.MediaRef) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var (
		mu   sync.Mutex
		errs error
	)
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref.Type != checklist.MediaPhoto || ref.URI == "" || seen[ref.URI] {
			continue
		}
		seen[ref.URI] = true
		uri := ref.URI
		g.Go(func() error {
			if _, err := r.Resolve(ctx, uri); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("prefetch %s: %w", uri, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	if errs != nil {
		r.log.Info("media prefetch finished with failures",
			observability.Int("requested", len(seen)),
			observability.Int("failed", len(multierr.Errors(errs))))
	}
	return errs
}

// CollectRefs walks a record and returns every media reference reachable
// from report-eligible entries, in document order.
func CollectRefs(items []checklist.Item) []checklist.MediaRef {
	var refs []checklist.MediaRef
	appendEntries := func(entries []checklist.Entry) {
		for _, e := range entries {
			if !e.IncludeInReport {
				continue
			}
			refs = append(refs, e.Media...)
		}
	}
	for _, item := range items {
		appendEntries(item.Entries)
		for _, task := range item.Tasks {
			appendEntries(task.Entries)
		}
	}
	return refs
}
