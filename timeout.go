package smtpwire

import (
	"context"
	"time"
)

// race runs op in its own goroutine and waits up to d for its result. If
// the deadline (or ctx) fires first, the caller gets timeoutErr (or the
// context error) and the operation is abandoned: it keeps running, and its
// eventual result is discarded. Abandoned operations must therefore
// validate the channel generation before touching channel state. A zero d
// disables the deadline.
func race[T any](ctx context.Context, d time.Duration, timeoutErr error, op func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	// Buffered so the abandoned op can settle without a reader.
	results := make(chan result, 1)
	go func() {
		v, err := op()
		results <- result{v, err}
	}()

	var deadline <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		deadline = timer.C
	}

	var zero T
	select {
	case r := <-results:
		return r.v, r.err
	case <-deadline:
		return zero, timeoutErr
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
