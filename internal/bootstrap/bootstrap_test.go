package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvix-software/course-economics/config"
	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("REDIS_DISABLED", "true")
	cfg, err := config.LoadFrom(config.NewViper())
	require.NoError(t, err)
	return cfg
}

func TestOpen_MemoryStore(t *testing.T) {
	cfg := memoryConfig(t)

	infra, err := Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer infra.Close()

	assert.NotNil(t, infra.Courses)
	assert.NotNil(t, infra.Progress)
	assert.NotNil(t, infra.Distributions)
	assert.NotNil(t, infra.Installments)
	assert.NotNil(t, infra.EarningsCache)
	assert.NotNil(t, infra.IssuanceLock)
	assert.NotNil(t, infra.Bus)
	assert.Empty(t, infra.Dependencies)
}

func TestOpen_FeaturesOff(t *testing.T) {
	t.Setenv("FEATURE_EARNINGS_CACHE", "false")
	t.Setenv("FEATURE_CERTIFICATE_ISSUANCE_LOCK", "false")
	cfg := memoryConfig(t)

	infra, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer infra.Close()

	assert.Nil(t, infra.EarningsCache)
	assert.Nil(t, infra.IssuanceLock)
}

func TestOpen_MemoryStoreRejectedInStaging(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.App.Environment = config.EnvStaging

	_, err := Open(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrMemoryStoreNotAllowed)
}

func TestOpen_EarningsInvalidatedThroughBus(t *testing.T) {
	cfg := memoryConfig(t)
	infra, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer infra.Close()

	ctx := context.Background()
	require.NoError(t, infra.EarningsCache.Set(ctx, &payment.Earnings{MentorID: "m-1"}))

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, infra.Bus.Publish(shared.NewDistributionEvent(
		shared.EventDistributionSettled, "d-1", "m-1", "c-1", "completed", "100", "70", now,
	)))

	assert.Eventually(t, func() bool {
		_, ok, err := infra.EarningsCache.Get(ctx, "m-1")
		return err == nil && !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNewDistributor(t *testing.T) {
	cfg := memoryConfig(t)

	d, err := NewDistributor(cfg.Economics, shared.SystemClock{}, UUIDs)
	require.NoError(t, err)
	assert.NotNil(t, d)

	bad := cfg.Economics
	bad.DefaultPlatformPercent = decimal.NewFromInt(50)
	_, err = NewDistributor(bad, shared.SystemClock{}, UUIDs)
	assert.Error(t, err)

	bad = cfg.Economics
	bad.RoundingMode = "bankers"
	_, err = NewDistributor(bad, shared.SystemClock{}, UUIDs)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(config.ObservabilityConfig{LogLevel: "debug", LogFormat: "console"}, "1.2.3")
	require.NotNil(t, log)
	assert.True(t, log.Zap().Core().Enabled(logger.LevelDebug))
}

func TestUUIDs(t *testing.T) {
	a, b := UUIDs.NewID(), UUIDs.NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
