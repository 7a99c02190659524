// internal/query/retry.go
//
// Bounded retry around a single retrieval attempt.  Policies are data, not
// code, so each repository declares how patient its paths are and the
// mechanics live in one place.
package query

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds how a failed attempt is retried.  The zero value never
// retries.
type Policy struct {
	// Attempts is the number of extra attempts after the first failure.
	Attempts uint64
	// Delay is the pause before the first extra attempt, and the fixed
	// pause for every later one unless Doubling is set.
	Delay time.Duration
	// Doubling grows the pause geometrically instead of keeping it fixed.
	Doubling bool
}

var (
	// NoRetry fails on the first error.
	NoRetry = Policy{}

	// RetryOnce makes one extra attempt after a short fixed pause.  The
	// view-backed read paths use it: a view either answers on the second
	// try or the manual join takes over.
	RetryOnce = Policy{Attempts: 1, Delay: 400 * time.Millisecond}

	// RetryDoubling makes up to three extra attempts with a doubling
	// pause.  The promotion feed uses it because its upstream flaps under
	// campaign-launch load.
	RetryDoubling = Policy{Attempts: 3, Delay: 300 * time.Millisecond, Doubling: true}
)

// Retry runs fn until it succeeds, returns a non-transient error, the
// policy is spent, or ctx is done.  Non-transient errors, including
// sql.ErrNoRows and cancellation, abort immediately; see Transient.
func Retry(ctx context.Context, p Policy, fn func(context.Context) error) error {
	op := func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !Transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var bo backoff.BackOff
	if p.Doubling {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = p.Delay
		eb.Multiplier = 2
		eb.MaxElapsedTime = 0
		bo = eb
	} else {
		bo = backoff.NewConstantBackOff(p.Delay)
	}
	bo = backoff.WithContext(backoff.WithMaxRetries(bo, p.Attempts), ctx)

	return backoff.Retry(op, bo)
}
