package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/pkg/circuitbreaker"
)

func unreachableCache() *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	return NewCacheFromClient(client, "test:")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr())
	assert.Equal(t, "econ:", cfg.KeyPrefix)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "earnings:m-1", EarningsKey("m-1"))
	assert.Equal(t, "lock:certificate:c-1:s-1", IssuanceLockKey("c-1", "s-1"))

	c := NewCacheFromClient(nil, "econ:")
	assert.Equal(t, "econ:earnings:m-1", c.key(EarningsKey("m-1")))
}

func TestNewCache_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.MaxRetries = -1
	cfg.DialTimeout = 200 * time.Millisecond

	_, err := NewCache(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func TestCache_ArgumentChecks(t *testing.T) {
	c := unreachableCache()
	defer c.Close()
	ctx := context.Background()

	assert.ErrorIs(t, c.Set(ctx, "", 1, time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Set(ctx, "k", 1, -time.Second), ErrCacheInvalidTTL)
	assert.ErrorIs(t, c.Get(ctx, "", nil), ErrCacheKeyEmpty)

	_, err := c.SetNX(ctx, "k", "v", 0)
	assert.ErrorIs(t, err, ErrCacheInvalidTTL)

	assert.NoError(t, c.Delete(ctx))
}

func TestIssuanceLock_ErrorIsNotOwnership(t *testing.T) {
	c := unreachableCache()
	defer c.Close()

	release, ok, err := NewIssuanceLock(c, 0).Acquire(context.Background(), "c-1", "s-1")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)
}

func TestEarningsCache_Defaults(t *testing.T) {
	ec := NewEarningsCache(unreachableCache(), 0, nil)
	assert.Equal(t, TTLEarningsCache, ec.ttl)
	assert.NoError(t, ec.Set(context.Background(), nil))
}

func TestEarningsCache_BreakerDegradesToMiss(t *testing.T) {
	c := unreachableCache()
	defer c.Close()
	ctx := context.Background()

	breaker := circuitbreaker.New("test", circuitbreaker.WithFailureThreshold(2), circuitbreaker.WithCoolDown(time.Hour))
	ec := NewEarningsCache(c, time.Minute, breaker)

	for i := 0; i < 2; i++ {
		_, ok, err := ec.Get(ctx, "m-1")
		assert.Error(t, err)
		assert.False(t, ok)
	}
	require.Equal(t, circuitbreaker.StateOpen, breaker.State())

	_, ok, err := ec.Get(ctx, "m-1")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, ec.Set(ctx, &payment.Earnings{MentorID: "m-1"}))
	assert.Equal(t, 2, breaker.Counts().Rejected)

	assert.Error(t, ec.Invalidate(ctx, "m-1"))
}
