// Package workerpool runs one action per target with bounded concurrency.
//
// A pool is created per stage and never nested. The failure policy decides
// whether an item error aborts the batch or is logged and counted.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"syphon/internal/logging"
	"syphon/internal/services"
)

// Policy selects how item errors affect the batch.
type Policy string

const (
	// Abort cancels the remaining items on the first error and returns it.
	Abort Policy = "abort"
	// Skip logs item errors, counts them, and lets the batch finish.
	Skip Policy = "skip"
)

// ParsePolicy maps a configuration value to a Policy. Unknown values are Skip.
func ParsePolicy(value string) Policy {
	if strings.EqualFold(strings.TrimSpace(value), string(Abort)) {
		return Abort
	}
	return Skip
}

// ErrSkipped is returned by actions that found nothing to do for an item. It
// is counted separately and never treated as a failure.
var ErrSkipped = errors.New("item skipped")

// Options configures one batch.
type Options[T any] struct {
	Workers int
	Policy  Policy
	Logger  *slog.Logger
	Stage   string
	// Label names an item in logs; defaults to fmt.Sprint.
	Label func(T) string
}

// Result counts the outcome of a batch.
type Result struct {
	Processed int
	Skipped   int
	Failed    int
}

// Add accumulates another batch into r.
func (r *Result) Add(other Result) {
	r.Processed += other.Processed
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

// Total returns the number of items the batch touched.
func (r Result) Total() int {
	return r.Processed + r.Skipped + r.Failed
}

// RunAll invokes action for every target with at most opts.Workers running at
// once and blocks until all have completed. Under Abort the first error is
// returned and items not yet started are dropped. Under Skip item errors are
// logged and the call only fails when ctx is cancelled.
func RunAll[T any](ctx context.Context, opts Options[T], targets []T, action func(context.Context, T) error) (Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	label := opts.Label
	if label == nil {
		label = func(item T) string { return fmt.Sprint(item) }
	}
	logger := logging.WithContext(ctx, opts.Logger)
	if opts.Stage != "" {
		ctx = services.WithStage(ctx, opts.Stage)
	}

	var processed, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, target := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			name := label(target)
			itemCtx := services.WithItem(gctx, name)
			err := action(itemCtx, target)
			switch {
			case err == nil:
				processed.Add(1)
				return nil
			case errors.Is(err, ErrSkipped):
				skipped.Add(1)
				logger.Debug("item skipped", logging.String(logging.FieldItem, name), logging.String("reason", err.Error()))
				return nil
			}
			failed.Add(1)
			if opts.Policy == Abort {
				logging.ErrorWithContext(logger, "item failed; aborting stage", "item_failed",
					logging.String(logging.FieldItem, name),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, services.Hint(err)),
				)
				return fmt.Errorf("%s: %w", name, err)
			}
			if ctx.Err() != nil {
				return nil
			}
			logging.WarnWithContext(logger, "item failed; skipping", "item_failed",
				logging.String(logging.FieldItem, name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
			)
			return nil
		})
	}

	err := g.Wait()
	result := Result{
		Processed: int(processed.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}
	if err != nil {
		return result, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	return result, nil
}
