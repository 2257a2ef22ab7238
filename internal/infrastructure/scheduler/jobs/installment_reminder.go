// Package jobs contains the worker's scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// INSTALLMENT REMINDER JOB
// ══════════════════════════════════════════════════════════════════════════════

// InstallmentReminderJob publishes an InstallmentDue event for every unpaid
// installment falling due within the look-ahead window, then stamps it so
// each installment is reminded once.
type InstallmentReminderJob struct {
	installments payment.InstallmentRepository
	publisher    shared.EventPublisher
	clock        shared.Clock
	log          *logger.Logger

	config InstallmentReminderConfig

	lastRunStats atomic.Pointer[InstallmentReminderStats]
}

// InstallmentReminderConfig contains configuration for the reminder job.
type InstallmentReminderConfig struct {
	// LookAhead is how far before the due date reminders go out.
	LookAhead time.Duration

	// BatchSize caps the installments handled per run.
	BatchSize int

	// Timeout is the maximum duration for one run.
	Timeout time.Duration
}

// DefaultInstallmentReminderConfig returns sensible defaults.
func DefaultInstallmentReminderConfig() InstallmentReminderConfig {
	return InstallmentReminderConfig{
		LookAhead: 72 * time.Hour,
		BatchSize: 500,
		Timeout:   2 * time.Minute,
	}
}

// InstallmentReminderStats contains statistics from one run.
type InstallmentReminderStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Horizon     time.Time
	Found       int
	Reminded    int
	Failed      int
}

// NewInstallmentReminderJob creates the job. Zero config fields take their
// defaults.
func NewInstallmentReminderJob(
	installments payment.InstallmentRepository,
	publisher shared.EventPublisher,
	clock shared.Clock,
	log *logger.Logger,
	config InstallmentReminderConfig,
) *InstallmentReminderJob {
	defaults := DefaultInstallmentReminderConfig()
	if config.LookAhead <= 0 {
		config.LookAhead = defaults.LookAhead
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if log == nil {
		log = logger.Nop()
	}

	return &InstallmentReminderJob{
		installments: installments,
		publisher:    publisher,
		clock:        clock,
		log:          log.With(logger.Component("installment_reminder")),
		config:       config,
	}
}

// Name implements scheduler.Job.
func (j *InstallmentReminderJob) Name() string {
	return "installment_reminder"
}

// Description implements scheduler.Job.
func (j *InstallmentReminderJob) Description() string {
	return fmt.Sprintf("publishes due reminders for installments due within %s", j.config.LookAhead)
}

// Run implements scheduler.Job. A failed publish leaves the installment
// unstamped so the next run retries it.
func (j *InstallmentReminderJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	now := j.clock.Now()
	stats := &InstallmentReminderStats{
		StartedAt: now,
		Horizon:   now.Add(j.config.LookAhead),
	}
	defer func() {
		stats.CompletedAt = j.clock.Now()
		j.lastRunStats.Store(stats)
	}()

	due, err := j.installments.ListNeedingReminder(ctx, stats.Horizon, j.config.BatchSize)
	if err != nil {
		return fmt.Errorf("list due installments: %w", err)
	}
	stats.Found = len(due)

	for _, it := range due {
		if ctx.Err() != nil {
			break
		}
		if err := j.remind(ctx, it, now); err != nil {
			stats.Failed++
			j.log.Warn("installment reminder failed",
				logger.CourseID(it.CourseID),
				logger.StudentID(it.StudentID),
				logger.Int("installment_number", it.Number),
				logger.Err(err),
			)
			continue
		}
		stats.Reminded++
	}

	j.log.Info("installment reminders sent",
		logger.Int("found", stats.Found),
		logger.Int("reminded", stats.Reminded),
		logger.Int("failed", stats.Failed),
	)

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d reminders failed", stats.Failed, stats.Found)
	}
	return ctx.Err()
}

func (j *InstallmentReminderJob) remind(ctx context.Context, it *payment.Installment, now time.Time) error {
	event := shared.NewInstallmentEvent(shared.EventInstallmentDue,
		it.CourseID, it.StudentID, it.Number, it.TotalInstallments,
		it.Amount.StringFixed(payment.CurrencyPlaces), it.DueDate, now)

	if err := j.publisher.Publish(event); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := j.installments.MarkReminded(ctx, it.ID, now); err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	return nil
}

// LastRunStats returns statistics from the most recent run, or nil.
func (j *InstallmentReminderJob) LastRunStats() *InstallmentReminderStats {
	return j.lastRunStats.Load()
}
