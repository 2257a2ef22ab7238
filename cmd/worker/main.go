// Package main is the entry point for the course economics worker.
//
// The worker runs scheduled jobs. Today that is the installment reminder,
// which publishes an installment_due event for every pending installment
// entering the look-ahead window.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/evolvix-software/course-economics/config"
	"github.com/evolvix-software/course-economics/internal/bootstrap"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/internal/infrastructure/scheduler"
	"github.com/evolvix-software/course-economics/internal/infrastructure/scheduler/jobs"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := bootstrap.NewLogger(cfg.Observability, cfg.App.Version).With(logger.Component("worker"))
	defer func() { _ = log.Sync() }()

	log.Info("starting course economics worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("timezone", cfg.App.Timezone),
	)

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler disabled, nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. INFRASTRUCTURE
	// ─────────────────────────────────────────────────────────────────────────
	infra, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open infrastructure: %w", err)
	}
	defer func() {
		log.Info("closing infrastructure...")
		infra.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	registered := 0
	if cfg.Features.IsEnabled(config.FeatureInstallmentRemind) {
		reminder := jobs.NewInstallmentReminderJob(
			infra.Installments,
			infra.Bus,
			shared.SystemClock{},
			log,
			jobs.InstallmentReminderConfig{
				LookAhead: cfg.Scheduler.ReminderLookAhead,
				BatchSize: cfg.Scheduler.ReminderBatchSize,
				Timeout:   cfg.Scheduler.JobTimeout,
			},
		)
		if err := sched.Register(reminder, cfg.Scheduler.ReminderSchedule); err != nil {
			return fmt.Errorf("failed to register %s: %w", reminder.Name(), err)
		}
		registered++
	}

	if registered == 0 {
		log.Warn("no jobs enabled, nothing to do")
		return nil
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	for _, job := range sched.ListJobs() {
		log.Info("job scheduled",
			logger.String("job", job.Name),
			logger.String("schedule", job.Schedule),
			logger.Time("next_run", job.NextRun),
		)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...", logger.Duration("timeout", cfg.App.ShutdownTimeout))
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("scheduler did not stop in time", logger.Err(err))
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}
