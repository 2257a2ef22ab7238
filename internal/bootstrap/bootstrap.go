// Package bootstrap assembles the infrastructure shared by the API and the
// worker: repositories, the earnings cache, the issuance lock and the event
// bus, chosen from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evolvix-software/course-economics/config"
	"github.com/evolvix-software/course-economics/internal/domain/certificate"
	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/internal/infrastructure/messaging"
	"github.com/evolvix-software/course-economics/internal/infrastructure/persistence/memory"
	"github.com/evolvix-software/course-economics/internal/infrastructure/persistence/postgres"
	"github.com/evolvix-software/course-economics/internal/infrastructure/persistence/redis"
	"github.com/evolvix-software/course-economics/pkg/circuitbreaker"
	"github.com/evolvix-software/course-economics/pkg/logger"
	"github.com/evolvix-software/course-economics/pkg/retry"
)

// ErrMemoryStoreNotAllowed is returned when no database is configured
// outside development and test.
var ErrMemoryStoreNotAllowed = errors.New("in-memory store is only allowed in development and test")

// EventBus is the bus both processes publish to and subscribe on.
type EventBus interface {
	shared.EventBus
	Close() error
}

// Dependency is a backing service that can be health checked.
type Dependency interface {
	Name() string
	Check(ctx context.Context) error
}

// Infrastructure holds every adapter a process needs. Optional adapters are
// nil interfaces when their feature is off.
type Infrastructure struct {
	Courses       course.Repository
	Progress      certificate.Repository
	Distributions payment.DistributionRepository
	Installments  payment.InstallmentRepository

	EarningsCache payment.EarningsCache
	IssuanceLock  certificate.IssuanceLock
	Bus           EventBus

	// Dependencies lists the services readiness depends on.
	Dependencies []Dependency

	log     *logger.Logger
	closers []func()
}

// Open connects to the configured stores. Close must be called on success.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Infrastructure, error) {
	if log == nil {
		log = logger.Nop()
	}
	infra := &Infrastructure{log: log.With(logger.Component("bootstrap"))}

	if err := infra.openStore(ctx, cfg); err != nil {
		infra.Close()
		return nil, err
	}

	cache, err := infra.openRedis(ctx, cfg)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.wireOptional(cfg, cache)

	if err := infra.openBus(cfg, cache); err != nil {
		infra.Close()
		return nil, err
	}
	return infra, nil
}

func (i *Infrastructure) openStore(ctx context.Context, cfg *config.Config) error {
	if cfg.UsesMemoryStore() {
		if cfg.App.Environment != config.EnvDevelopment && cfg.App.Environment != config.EnvTest {
			return ErrMemoryStoreNotAllowed
		}
		i.log.Warn("DATABASE_URL not set, using in-memory repositories")
		i.Courses = memory.NewCourseRepository()
		i.Progress = memory.NewProgressRepository()
		i.Distributions = memory.NewDistributionRepository()
		i.Installments = memory.NewInstallmentRepository()
		return nil
	}

	poolCfg := postgres.DefaultPoolConfig()
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	startup := retry.StartupRetrier(cfg.Database.StartupAttempts, i.onRetry("postgres"))
	conn, err := retry.Value(ctx, startup, func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL, poolCfg)
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	i.closers = append(i.closers, conn.Close)
	i.Dependencies = append(i.Dependencies, conn)
	i.log.Info("database connection established")

	if cfg.Database.AutoMigrate {
		applied, err := postgres.NewMigrator(conn).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		i.log.Info("migrations completed", logger.Int("applied", applied))
	}

	i.Courses = postgres.NewCourseRepository(conn)
	i.Progress = postgres.NewProgressRepository(conn)
	i.Distributions = postgres.NewDistributionRepository(conn)
	i.Installments = postgres.NewInstallmentRepository(conn)
	return nil
}

// openRedis returns nil when Redis is disabled. An unreachable Redis is
// fatal except in development.
func (i *Infrastructure) openRedis(ctx context.Context, cfg *config.Config) (*redis.Cache, error) {
	if cfg.Redis.Disabled {
		return nil, nil
	}

	rc := redis.DefaultConfig()
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	rc.PoolSize = cfg.Redis.PoolSize
	rc.MinIdleConns = cfg.Redis.MinIdleConns
	rc.DialTimeout = cfg.Redis.DialTimeout
	rc.ReadTimeout = cfg.Redis.ReadTimeout
	rc.WriteTimeout = cfg.Redis.WriteTimeout
	rc.KeyPrefix = cfg.Redis.KeyPrefix

	attempts := cfg.Database.StartupAttempts
	if cfg.IsDevelopment() {
		attempts = 1
	}

	cache, err := retry.Value(ctx, retry.StartupRetrier(attempts, i.onRetry("redis")), func(ctx context.Context) (*redis.Cache, error) {
		return redis.NewCache(ctx, rc)
	})
	if err != nil {
		if cfg.IsDevelopment() {
			i.log.Warn("redis unavailable, continuing without it", logger.Err(err))
			return nil, nil
		}
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	i.closers = append(i.closers, func() { _ = cache.Close() })
	i.Dependencies = append(i.Dependencies, cache)
	i.log.Info("redis connection established", logger.String("addr", rc.Addr()))
	return cache, nil
}

// wireOptional picks the cache and lock. Without Redis the in-process
// versions are only used with the in-memory store, where a single process
// owns all state.
func (i *Infrastructure) wireOptional(cfg *config.Config, cache *redis.Cache) {
	switch {
	case cache != nil:
		if cfg.Features.IsEnabled(config.FeatureEarningsCache) {
			i.EarningsCache = redis.NewEarningsCache(cache, redis.TTLEarningsCache, circuitbreaker.CacheBreaker(i.onStateChange))
		}
		if cfg.Features.IsEnabled(config.FeatureIssuanceLock) {
			i.IssuanceLock = redis.NewIssuanceLock(cache, redis.TTLIssuanceLock)
		}
	case cfg.UsesMemoryStore():
		if cfg.Features.IsEnabled(config.FeatureEarningsCache) {
			i.EarningsCache = memory.NewEarningsCache()
		}
		if cfg.Features.IsEnabled(config.FeatureIssuanceLock) {
			i.IssuanceLock = memory.NewIssuanceLock()
		}
	}
}

func (i *Infrastructure) openBus(cfg *config.Config, cache *redis.Cache) error {
	local := messaging.DefaultInMemoryEventBusConfig()
	local.Logger = i.log

	if cache != nil && cfg.Features.IsEnabled(config.FeatureRedisEventRelay) {
		bus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:      messaging.NewGoRedisClient(cache.Client()),
			ChannelName: cfg.Redis.EventChannel,
			Local:       local,
			Logger:      i.log,
		})
		if err != nil {
			return fmt.Errorf("event relay: %w", err)
		}
		i.Bus = bus
	} else {
		i.Bus = messaging.NewInMemoryEventBus(local)
	}
	// closers run in reverse, so the bus drains before Redis closes
	i.closers = append(i.closers, func() { _ = i.Bus.Close() })

	return messaging.RegisterDefaultHandlers(i.Bus, i.EarningsCache, i.log)
}

func (i *Infrastructure) onRetry(service string) func(int, error, time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		i.log.Warn("backing service not ready, retrying",
			logger.String("service", service),
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	}
}

func (i *Infrastructure) onStateChange(name string, from, to circuitbreaker.State) {
	i.log.Warn("circuit breaker state changed",
		logger.String("breaker", name),
		logger.String("from", from.String()),
		logger.String("to", to.String()),
	)
}

// Close releases everything Open acquired, newest first.
func (i *Infrastructure) Close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		i.closers[n]()
	}
	i.closers = nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN SERVICES
// ══════════════════════════════════════════════════════════════════════════════

// NewDistributor builds the distributor from the economics settings.
func NewDistributor(cfg config.EconomicsConfig, clock shared.Clock, ids shared.IDGenerator) (*payment.Distributor, error) {
	split, err := course.NewCommissionSplit(cfg.DefaultPlatformPercent, cfg.DefaultMentorPercent)
	if err != nil {
		return nil, fmt.Errorf("default split: %w", err)
	}
	mode, ok := payment.ParseRoundingMode(cfg.RoundingMode)
	if !ok {
		return nil, fmt.Errorf("rounding mode %q: %w", cfg.RoundingMode, shared.ErrInvalidInput)
	}
	return payment.NewDistributor(payment.DistributorConfig{DefaultSplit: split, Rounding: mode}, clock, ids)
}

// NewIssuer builds the certificate issuer from the economics settings.
func NewIssuer(cfg config.EconomicsConfig, clock shared.Clock) *certificate.Issuer {
	return certificate.NewIssuer(certificate.IssuerConfig{
		Threshold: cfg.CertificateThreshold,
		URLPrefix: cfg.CertificateURLPrefix,
	}, clock)
}

// NewLogger builds the process logger from the observability settings.
func NewLogger(cfg config.ObservabilityConfig, version string) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.LogLevel)
	if cfg.LogFormat == string(logger.FormatConsole) {
		opts.Format = logger.FormatConsole
	}
	return logger.New(opts).With(logger.String("version", version))
}

// UUIDs generates random UUIDv4 identifiers.
var UUIDs = shared.IDGeneratorFunc(uuid.NewString)
