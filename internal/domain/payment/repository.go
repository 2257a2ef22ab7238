package payment

import (
	"context"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

// Payment repository errors.
var (
	ErrScheduleExists      = shared.NewDomainError("payment", "SaveSchedule", shared.ErrAlreadyExists, "installment schedule already exists")
	ErrInstallmentNotFound = shared.NewDomainError("payment", "FindInstallment", shared.ErrNotFound, "installment not found")
)

// DistributionRepository stores distributions.
type DistributionRepository interface {
	// Create stores a new distribution.
	// Returns shared.ErrDistributionExists if the ID is taken.
	Create(ctx context.Context, d *Distribution) error

	// GetByID returns a distribution.
	// Returns shared.ErrDistributionNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Distribution, error)

	// UpdateStatus writes d only if the stored status still equals expected.
	// Returns shared.ErrDistributionConflict otherwise.
	UpdateStatus(ctx context.Context, expected Status, d *Distribution) error

	// ListByMentor returns all distributions of a mentor, newest first.
	ListByMentor(ctx context.Context, mentorID string) ([]*Distribution, error)
}

// InstallmentRepository stores installment schedules.
type InstallmentRepository interface {
	// SaveSchedule stores a whole schedule atomically.
	// Returns ErrScheduleExists if the enrollment already has one.
	SaveSchedule(ctx context.Context, items []*Installment) error

	// ListByEnrollment returns a schedule ordered by number.
	ListByEnrollment(ctx context.Context, courseID, studentID string) ([]*Installment, error)

	// ListNeedingReminder returns unpaid, unreminded installments due on or
	// before horizon, oldest first.
	ListNeedingReminder(ctx context.Context, horizon time.Time, limit int) ([]*Installment, error)

	// MarkReminded stamps RemindedAt.
	MarkReminded(ctx context.Context, id string, at time.Time) error

	// MarkPaid marks one installment of an enrollment paid. It reports false
	// when the installment was already paid.
	MarkPaid(ctx context.Context, courseID, studentID string, number int, at time.Time) (bool, error)
}

// EarningsCache caches mentor earnings summaries.
type EarningsCache interface {
	// Get returns the cached summary, or ok=false on a miss.
	Get(ctx context.Context, mentorID string) (*Earnings, bool, error)

	// Set stores a summary.
	Set(ctx context.Context, e *Earnings) error

	// Invalidate drops the mentor's summary.
	Invalidate(ctx context.Context, mentorID string) error
}
