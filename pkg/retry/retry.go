// Package retry runs an operation until it succeeds, with a doubling wait
// between attempts. It is used for connecting to infrastructure only; calls
// against the booking API are never retried.
package retry

import (
	"context"
	"errors"
	"time"
)

// Backoff describes the attempt budget and the waits between attempts
type Backoff struct {
	// Attempts is the total number of calls, including the first (minimum 1)
	Attempts int
	// Interval is the wait after the first failure
	Interval time.Duration
	// Max caps the doubled wait. Zero or anything below Interval keeps the wait fixed.
	Max time.Duration
}

// Wait returns the pause after the given failed attempt (1-based)
func (b Backoff) Wait(attempt int) time.Duration {
	d := b.Interval
	if b.Max <= b.Interval {
		return d
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	return d
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Do returns it without another attempt
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls op until it returns nil, returns a Permanent error, the attempts run
// out or ctx is done. It returns the number of calls made and the last error
// from op, or ctx.Err() when cancelled while waiting.
func Do(ctx context.Context, b Backoff, op func(ctx context.Context) error) (int, error) {
	attempts := max(b.Attempts, 1)

	var err error
	for n := 1; ; n++ {
		err = op(ctx)
		if err == nil {
			return n, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return n, perm.err
		}
		if n == attempts {
			return n, err
		}

		timer := time.NewTimer(b.Wait(n))
		select {
		case <-ctx.Done():
			timer.Stop()
			return n, ctx.Err()
		case <-timer.C:
		}
	}
}
