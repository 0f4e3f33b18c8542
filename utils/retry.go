package utils

import (
	"context"
	"time"

	"fstop/apperr"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy controls how often a store call is repeated after an
// UpstreamUnavailable failure. Other kinds are returned immediately.
type RetryPolicy struct {
	Retries int
	Delay   time.Duration
}

// linearBackOff waits Delay, then 2*Delay, then 3*Delay.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.step * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	retries := p.Retries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(&linearBackOff{step: p.Delay}, uint64(retries)), ctx)
}

// Retry calls fn until it succeeds, fails with a non-retryable kind, or the
// policy is exhausted. When ctx ends between attempts the last failure is
// returned.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var last error
	out, err := backoff.RetryWithData(func() (T, error) {
		out, err := fn(ctx)
		last = err
		if err != nil && !apperr.Is(err, apperr.UpstreamUnavailable) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}, p.backOff(ctx))
	if err != nil && last != nil && ctx.Err() != nil {
		return out, last
	}
	return out, err
}
