package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errBoom     = errors.New("boom")
	errConflict = errors.New("conflict")
)

func fast(p Policy) *Retrier {
	p.InitialDelay = time.Millisecond
	p.MaxDelay = 2 * time.Millisecond
	p.Jitter = 0
	return New(p)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := fast(Policy{MaxAttempts: 3}).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := fast(Policy{MaxAttempts: 2}).Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})

	assert.Equal(t, 2, calls)
	assert.Same(t, errBoom, err)
}

func TestDo_RetryIfRejects(t *testing.T) {
	r := fast(Policy{MaxAttempts: 5, RetryIf: func(err error) bool { return errors.Is(err, errConflict) }})

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, errBoom)

	calls = 0
	err = r.Do(context.Background(), func(context.Context) error {
		calls++
		return errConflict
	})
	assert.Equal(t, 5, calls)
	assert.ErrorIs(t, err, errConflict)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	err := fast(Policy{MaxAttempts: 5}).Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(errBoom)
	})

	assert.Equal(t, 1, calls)
	assert.Same(t, errBoom, err)
	assert.True(t, IsPermanent(Permanent(errBoom)))
	assert.False(t, IsPermanent(errBoom))
	assert.Nil(t, Permanent(nil))
}

func TestDo_OnRetryCallback(t *testing.T) {
	var attempts []int
	r := fast(Policy{
		MaxAttempts: 3,
		OnRetry:     func(attempt int, _ error, _ time.Duration) { attempts = append(attempts, attempt) },
	})
	_ = r.Do(context.Background(), func(context.Context) error { return errBoom })

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fast(Policy{}).Do(ctx, func(context.Context) error {
		calls++
		return nil
	})

	assert.Zero(t, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValue(t *testing.T) {
	calls := 0
	v, err := Value(context.Background(), fast(Policy{MaxAttempts: 3}), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "partial", errBoom
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	v, err = Value(context.Background(), fast(Policy{MaxAttempts: 1}), func(context.Context) (string, error) {
		return "partial", errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, v)
}

func TestBackoff_CappedAtMax(t *testing.T) {
	r := New(Policy{InitialDelay: 100 * time.Millisecond, MaxDelay: 250 * time.Millisecond})

	assert.Equal(t, 100*time.Millisecond, r.backoff(1))
	assert.Equal(t, 200*time.Millisecond, r.backoff(2))
	assert.Equal(t, 250*time.Millisecond, r.backoff(3))
}

func TestNew_Defaults(t *testing.T) {
	r := New(Policy{Jitter: 5})

	assert.Equal(t, 3, r.policy.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, r.policy.InitialDelay)
	assert.Equal(t, 2.0, r.policy.Multiplier)
	assert.Zero(t, r.policy.Jitter)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, 8, StartupRetrier(0, nil).policy.MaxAttempts)
	assert.Equal(t, 3, StartupRetrier(3, nil).policy.MaxAttempts)
	assert.Nil(t, StartupRetrier(3, nil).policy.RetryIf)

	conflict := ConflictRetrier(func(err error) bool { return errors.Is(err, errConflict) })
	assert.Equal(t, 3, conflict.policy.MaxAttempts)
	assert.True(t, conflict.policy.RetryIf(errConflict))
	assert.False(t, conflict.policy.RetryIf(errBoom))
}
