package redis

import (
	"context"
	"errors"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/pkg/circuitbreaker"
)

// EarningsCache implements payment.EarningsCache on top of Cache.
//
// Reads and writes go through a circuit breaker: while Redis is failing they
// are skipped, which callers see as a miss or a no-op. Invalidations always
// reach Redis.
type EarningsCache struct {
	cache   *Cache
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewEarningsCache creates a new EarningsCache. A non-positive ttl uses
// TTLEarningsCache; a nil breaker disables short-circuiting.
func NewEarningsCache(cache *Cache, ttl time.Duration, breaker *circuitbreaker.CircuitBreaker) *EarningsCache {
	if ttl <= 0 {
		ttl = TTLEarningsCache
	}
	return &EarningsCache{cache: cache, ttl: ttl, breaker: breaker}
}

func (e *EarningsCache) guard(ctx context.Context, fn func(context.Context) error) error {
	if e.breaker == nil {
		return fn(ctx)
	}
	return e.breaker.Execute(ctx, fn)
}

// Get returns the cached summary, or ok=false on a miss.
func (e *EarningsCache) Get(ctx context.Context, mentorID string) (*payment.Earnings, bool, error) {
	var (
		summary payment.Earnings
		hit     bool
	)
	err := e.guard(ctx, func(ctx context.Context) error {
		err := e.cache.Get(ctx, EarningsKey(mentorID), &summary)
		if errors.Is(err, ErrCacheMiss) {
			return nil
		}
		hit = err == nil
		return err
	})
	if circuitbreaker.IsRejection(err) {
		return nil, false, nil
	}
	if err != nil || !hit {
		return nil, false, err
	}
	return &summary, true, nil
}

// Set stores a summary.
func (e *EarningsCache) Set(ctx context.Context, summary *payment.Earnings) error {
	if summary == nil {
		return nil
	}
	err := e.guard(ctx, func(ctx context.Context) error {
		return e.cache.Set(ctx, EarningsKey(summary.MentorID), summary, e.ttl)
	})
	if circuitbreaker.IsRejection(err) {
		return nil
	}
	return err
}

// Invalidate drops the mentor's summary.
func (e *EarningsCache) Invalidate(ctx context.Context, mentorID string) error {
	return e.cache.Delete(ctx, EarningsKey(mentorID))
}
