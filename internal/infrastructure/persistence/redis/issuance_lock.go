package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IssuanceLock implements certificate.IssuanceLock with SET NX. Each holder
// writes a random token so an expired holder cannot release a lock that
// has since been taken by someone else.
type IssuanceLock struct {
	cache *Cache
	ttl   time.Duration
}

// NewIssuanceLock creates a new IssuanceLock. A non-positive ttl uses
// TTLIssuanceLock.
func NewIssuanceLock(cache *Cache, ttl time.Duration) *IssuanceLock {
	if ttl <= 0 {
		ttl = TTLIssuanceLock
	}
	return &IssuanceLock{cache: cache, ttl: ttl}
}

// Acquire takes the lock for a pair if it is free.
func (l *IssuanceLock) Acquire(ctx context.Context, courseID, studentID string) (func(context.Context) error, bool, error) {
	key := IssuanceLockKey(courseID, studentID)
	token := uuid.NewString()

	ok, err := l.cache.SetNX(ctx, key, token, l.ttl)
	if err != nil || !ok {
		return nil, false, err
	}

	release := func(ctx context.Context) error {
		_, err := l.cache.DeleteIfEquals(ctx, key, token)
		return err
	}
	return release, true, nil
}
