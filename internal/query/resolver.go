// internal/query/resolver.go
//
// Ordered-fallback resolver.
//
// Context
// -------
// Every read in the content layer is a short chain of retrieval paths: a
// read-optimized view first, a manual join against base tables when the
// view is broken or missing, and for blog posts an embedded seed dataset
// so the storefront never renders empty.  The resolver owns the chain
// mechanics: run each path with its retry policy, stop at the first
// success, account for every skipped path, and hand back a typed
// exhaustion error when nothing answered.
//
// Workflow
// --------
//  1. Repository declares []Strategy in priority order.
//  2. Resolve walks the chain; a path failure logs a warning and bumps
//     query_fallback_total, never an error.
//  3. First success wins; later paths are not run.
//  4. Caller inspects Result.Degraded when it needs to tell a primary
//     answer from a fallback one.
//
// Notes
// -----
//   - The resolver holds no state between calls.  A path that failed for
//     one request is tried fresh for the next.
//   - Cancellation aborts the chain and surfaces as the context's error,
//     never as exhaustion.
package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meridianmall/arcade/internal/metrics"
)

// Strategy is one retrieval path in a fallback chain.
type Strategy[T any] struct {
	// Name labels the path in logs and metrics: "view", "join", "seed".
	Name string

	// Run performs one attempt.
	Run func(ctx context.Context) (T, error)

	// Retry bounds extra attempts for this path.  Zero value means none.
	Retry Policy

	// EmptyIsMiss, when set, declares a successful-but-empty answer a miss
	// so the chain escalates.  Only honored on the first path; an empty
	// answer from a deeper path is accepted as final.
	EmptyIsMiss func(T) bool
}

// Result carries a resolved value and where it came from.
type Result[T any] struct {
	Value T
	// Source is the name of the path that answered.
	Source string
	// Degraded is true when any path before Source failed.
	Degraded bool
}

// Resolve walks the strategy chain in order and returns the first success.
// Failures along the way are warnings, not errors; when every path fails
// the returned error is an *ExhaustedError wrapping the last failure.  op
// names the logical operation for logs and metrics, for example
// "posts.list".
func Resolve[T any](ctx context.Context, op string, strategies []Strategy[T]) (Result[T], error) {
	if len(strategies) == 0 {
		return Result[T]{}, fmt.Errorf("query %s: no retrieval paths configured", op)
	}

	start := time.Now()
	var last error

	for i, s := range strategies {
		var out T
		err := Retry(ctx, s.Retry, func(ctx context.Context) error {
			v, runErr := s.Run(ctx)
			if runErr != nil {
				return runErr
			}
			out = v
			return nil
		})

		if err == nil && i == 0 && s.EmptyIsMiss != nil && s.EmptyIsMiss(out) {
			err = ErrEmptyResult
		}

		if err == nil {
			metrics.QueryDuration.WithLabelValues(op, s.Name).Observe(time.Since(start).Seconds())
			if i > 0 {
				zap.S().Infow("resolved on fallback path",
					"op", op, "path", s.Name, "skipped", i)
			}
			return Result[T]{Value: out, Source: s.Name, Degraded: i > 0}, nil
		}

		// The caller walked away; do not cascade through the rest of the
		// chain, and surface cancellation rather than exhaustion.
		if cerr := ctx.Err(); cerr != nil {
			metrics.QueryDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
			return Result[T]{}, fmt.Errorf("query %s: %w", op, cerr)
		}

		last = err
		metrics.FallbackTotal.WithLabelValues(op, s.Name).Inc()
		zap.S().Warnw("retrieval path failed",
			"op", op, "path", s.Name, "error", err)
	}

	metrics.ExhaustedTotal.WithLabelValues(op).Inc()
	metrics.QueryDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
	return Result[T]{}, &ExhaustedError{Op: op, Paths: len(strategies), Last: last}
}
