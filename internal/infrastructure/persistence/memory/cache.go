package memory

import (
	"context"
	"sync"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
)

// EarningsCache implements payment.EarningsCache in process memory.
type EarningsCache struct {
	mu      sync.RWMutex
	entries map[string]payment.Earnings
}

// NewEarningsCache creates an empty cache.
func NewEarningsCache() *EarningsCache {
	return &EarningsCache{entries: make(map[string]payment.Earnings)}
}

// Get returns the cached summary.
func (c *EarningsCache) Get(_ context.Context, mentorID string) (*payment.Earnings, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[mentorID]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

// Set stores a summary.
func (c *EarningsCache) Set(_ context.Context, e *payment.Earnings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[e.MentorID] = *e
	return nil
}

// Invalidate drops the mentor's summary.
func (c *EarningsCache) Invalidate(_ context.Context, mentorID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, mentorID)
	return nil
}

type lockKey struct {
	courseID  string
	studentID string
}

// IssuanceLock implements certificate.IssuanceLock for a single process.
type IssuanceLock struct {
	mu   sync.Mutex
	held map[lockKey]struct{}
}

// NewIssuanceLock creates a new IssuanceLock.
func NewIssuanceLock() *IssuanceLock {
	return &IssuanceLock{held: make(map[lockKey]struct{})}
}

// Acquire takes the lock for a pair if it is free.
func (l *IssuanceLock) Acquire(_ context.Context, courseID, studentID string) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey{courseID, studentID}
	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}
	return release, true, nil
}
