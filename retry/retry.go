// Package retry runs operations against remote APIs with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = time.Second
	backoffMultiplier   = 2
)

// Policy controls how often and how patiently an operation is retried.
// MaxRetries counts every attempt, the first one included.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
}

// DefaultPolicy waits 1s and then 2s between three attempts.
var DefaultPolicy = Policy{
	MaxRetries:   DefaultMaxRetries,
	InitialDelay: DefaultInitialDelay,
}

// StatusCoder is implemented by errors that carry an HTTP-style status code.
type StatusCoder interface {
	StatusCode() int
}

// wait blocks for d or until ctx is done. Tests replace it to record delays.
var wait = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do calls op until it succeeds, fails with a non-retryable error or the policy runs out of
// attempts. The delay after attempt i (0-indexed) is InitialDelay * 2^i. When attempts are
// exhausted the error of the last attempt is returned as is.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	policy = policy.normalize()

	delay := policy.InitialDelay
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if !IsRetryable(err) || attempt == policy.MaxRetries-1 {
			return zero, err
		}

		if err := wait(ctx, delay); err != nil {
			return zero, err
		}
		delay *= backoffMultiplier
	}
}

// IsRetryable reports whether err carries a rate-limit (429) or server-error (5xx) status.
func IsRetryable(err error) bool {
	status, ok := StatusOf(err)
	if !ok {
		return false
	}

	return IsRetryableStatus(status)
}

func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// StatusOf extracts the status code from the first StatusCoder in err's chain.
func StatusOf(err error) (int, bool) {
	var statusErr StatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}

	return statusErr.StatusCode(), true
}

func (p Policy) normalize() Policy {
	if p.MaxRetries < 1 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultInitialDelay
	}

	return p
}
