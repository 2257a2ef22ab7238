// Package retry re-runs an operation with exponential backoff and jitter.
// It backs startup connections to Postgres and Redis and the re-read loop
// around compare-and-swap status updates.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// PermanentError marks a failure that no number of attempts can fix, such as
// a malformed connection URL.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so the loop stops at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var permanentErr *PermanentError
	return errors.As(err, &permanentErr)
}

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts includes the first attempt. Default: 3
	MaxAttempts int

	// InitialDelay is the wait after the first failure. Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the wait between attempts. Default: 30s
	MaxDelay time.Duration

	// Multiplier grows the delay after each failure. Default: 2
	Multiplier float64

	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64

	// RetryIf selects the errors worth another attempt. Nil retries every
	// error that is not permanent.
	RetryIf func(error) bool

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 100 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		p.Jitter = 0
	}
	return p
}

// Retrier runs operations under one Policy. It is safe for concurrent use.
type Retrier struct {
	policy Policy
}

// New creates a Retrier. Zero fields of p take their defaults.
func New(p Policy) *Retrier {
	return &Retrier{policy: p.withDefaults()}
}

// Do runs op until it succeeds, fails with an error RetryIf rejects, fails
// permanently, runs out of attempts or ctx ends. The last operation error
// is returned, with any Permanent wrapper removed.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var permanent *PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		if r.policy.RetryIf != nil && !r.policy.RetryIf(err) {
			return err
		}
		if attempt == r.policy.MaxAttempts {
			return err
		}

		delay := r.backoff(attempt)
		if r.policy.OnRetry != nil {
			r.policy.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

// Value is Do for operations that produce a result. The zero T is returned
// on failure.
func Value[T any](ctx context.Context, r *Retrier, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// backoff is InitialDelay * Multiplier^(attempt-1), capped at MaxDelay and
// spread by Jitter.
func (r *Retrier) backoff(attempt int) time.Duration {
	delay := float64(r.policy.InitialDelay) * math.Pow(r.policy.Multiplier, float64(attempt-1))
	if delay > float64(r.policy.MaxDelay) {
		delay = float64(r.policy.MaxDelay)
	}
	if r.policy.Jitter > 0 {
		delay += delay * r.policy.Jitter * (rand.Float64()*2 - 1)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// StartupRetrier waits for backing services that start alongside the
// process. Every error is retried unless marked Permanent. A non-positive
// maxAttempts means 8.
func StartupRetrier(maxAttempts int, onRetry func(attempt int, err error, delay time.Duration)) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = 8
	}
	return New(Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		Jitter:       0.2,
		OnRetry:      onRetry,
	})
}

// ConflictRetrier re-runs a read-modify-write when a concurrent writer won
// the compare-and-swap. isConflict decides which errors are conflicts; any
// other error ends the loop.
func ConflictRetrier(isConflict func(error) bool) *Retrier {
	return New(Policy{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     200 * time.Millisecond,
		Multiplier:   2,
		Jitter:       0.1,
		RetryIf:      isConflict,
	})
}
