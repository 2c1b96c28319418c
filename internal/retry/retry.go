// Package retry runs an operation a bounded number of times.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds a retry loop. MaxAttempts counts total runs including the
// first; values below 1 mean a single run.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Result reports how many runs happened and the error of the last one.
// Err is nil when a run succeeded.
type Result struct {
	Attempts int
	Err      error
}

// OK reports whether a run succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Attempt runs fn until it returns nil or the policy is exhausted. fn gets the
// 1-based attempt number. A cancelled ctx stops further attempts; Err then
// holds the last failure from fn, or the context error if fn never ran.
func Attempt(ctx context.Context, p Policy, fn func(attempt int) error) Result {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}

	var (
		attempts int
		lastErr  error
	)
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		lastErr = fn(attempts)
		return struct{}{}, lastErr
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(delay)),
		backoff.WithMaxTries(uint(maxAttempts)),
	)
	if err == nil {
		return Result{Attempts: attempts}
	}
	if lastErr == nil {
		lastErr = err
	}
	return Result{Attempts: attempts, Err: lastErr}
}
