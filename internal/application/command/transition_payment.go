package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
	"github.com/evolvix-software/course-economics/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITION PAYMENT COMMAND
// Moves a distribution to processing, completed or failed. Terminal records
// are never touched: the result reports Changed=false. Storage uses a
// compare-and-swap on the previous status; a lost race is re-read and
// re-evaluated.
// ══════════════════════════════════════════════════════════════════════════════

// TransitionPaymentCommand names the distribution and the target status.
type TransitionPaymentCommand struct {
	DistributionID string
	Target         payment.Status

	// Reason is logged for failures.
	Reason string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c TransitionPaymentCommand) Validate() error {
	if strings.TrimSpace(c.DistributionID) == "" {
		return shared.NewDomainError("payment", "Transition", shared.ErrInvalidID, "distribution_id is required")
	}
	switch c.Target {
	case payment.StatusProcessing, payment.StatusCompleted, payment.StatusFailed:
		return nil
	default:
		return shared.NewDomainError("payment", "Transition", shared.ErrInvalidInput,
			fmt.Sprintf("cannot transition to %q", c.Target))
	}
}

// TransitionPaymentResult describes the outcome.
type TransitionPaymentResult struct {
	Distribution   *payment.Distribution
	PreviousStatus payment.Status
	Changed        bool
}

// TransitionPaymentHandler handles TransitionPaymentCommand.
type TransitionPaymentHandler struct {
	distributions payment.DistributionRepository
	installments  payment.InstallmentRepository // Optional: marks paid installments
	distributor   *payment.Distributor
	cache         payment.EarningsCache
	publisher     shared.EventPublisher
	retrier       *retry.Retrier
	log           *logger.Logger
}

// NewTransitionPaymentHandler creates a new TransitionPaymentHandler.
func NewTransitionPaymentHandler(
	distributions payment.DistributionRepository,
	installments payment.InstallmentRepository,
	distributor *payment.Distributor,
	cache payment.EarningsCache,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *TransitionPaymentHandler {
	return &TransitionPaymentHandler{
		distributions: distributions,
		installments:  installments,
		distributor:   distributor,
		cache:         cache,
		publisher:     publisherOrNop(publisher),
		retrier: retry.ConflictRetrier(func(err error) bool {
			return errors.Is(err, shared.ErrConcurrentModification)
		}),
		log: loggerOrNop(log).With(logger.Component("transition_payment")),
	}
}

// Handle executes the transition payment command.
func (h *TransitionPaymentHandler) Handle(ctx context.Context, cmd TransitionPaymentCommand) (*TransitionPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("transition_payment: %w", err)
	}

	result, err := retry.Value(ctx, h.retrier, func(ctx context.Context) (*TransitionPaymentResult, error) {
		return h.attempt(ctx, cmd)
	})
	if err != nil {
		return nil, fmt.Errorf("transition_payment: %w", err)
	}

	if !result.Changed {
		h.log.Debug("transition skipped",
			logger.DistributionID(cmd.DistributionID),
			logger.String("status", string(result.Distribution.Status)),
			logger.String("target", string(cmd.Target)),
		)
		return result, nil
	}

	d := result.Distribution
	h.afterTransition(ctx, d, cmd)
	return result, nil
}

func (h *TransitionPaymentHandler) attempt(ctx context.Context, cmd TransitionPaymentCommand) (*TransitionPaymentResult, error) {
	current, err := h.distributions.GetByID(ctx, cmd.DistributionID)
	if err != nil {
		return nil, err
	}

	var (
		next    payment.Distribution
		changed bool
	)
	switch cmd.Target {
	case payment.StatusProcessing:
		next, changed = h.distributor.MarkProcessing(*current)
	case payment.StatusCompleted:
		next, changed = h.distributor.Settle(*current)
	case payment.StatusFailed:
		next, changed = h.distributor.Fail(*current)
	}

	if !changed {
		return &TransitionPaymentResult{Distribution: current, PreviousStatus: current.Status}, nil
	}

	if err := h.distributions.UpdateStatus(ctx, current.Status, &next); err != nil {
		return nil, err
	}
	return &TransitionPaymentResult{Distribution: &next, PreviousStatus: current.Status, Changed: true}, nil
}

func (h *TransitionPaymentHandler) afterTransition(ctx context.Context, d *payment.Distribution, cmd TransitionPaymentCommand) {
	if d.Status == payment.StatusCompleted && d.IsInstallment() && h.installments != nil {
		paid, err := h.installments.MarkPaid(ctx, d.CourseID, d.StudentID, d.InstallmentNumber, d.UpdatedAt)
		switch {
		case err != nil && !errors.Is(err, shared.ErrNotFound):
			h.log.Warn("failed to mark installment paid", logger.DistributionID(d.ID), logger.Err(err))
		case paid:
			h.log.Debug("installment paid",
				logger.CourseID(d.CourseID),
				logger.StudentID(d.StudentID),
				logger.Int("installment_number", d.InstallmentNumber),
			)
		}
	}

	invalidateEarnings(ctx, h.cache, h.log, d.MentorID)

	event := shared.NewDistributionEvent(eventTypeFor(d.Status), d.ID, d.MentorID, d.CourseID,
		string(d.Status), d.Amount.String(), d.MentorCut.String(), d.UpdatedAt)
	event.CorrelationID = cmd.CorrelationID
	publish(h.publisher, h.log, event)

	fields := []logger.Field{
		logger.DistributionID(d.ID),
		logger.MentorID(d.MentorID),
		logger.String("status", string(d.Status)),
	}
	if d.Status == payment.StatusFailed && cmd.Reason != "" {
		fields = append(fields, logger.String("reason", cmd.Reason))
	}
	h.log.Info("distribution status changed", fields...)
}

func eventTypeFor(s payment.Status) shared.EventType {
	switch s {
	case payment.StatusProcessing:
		return shared.EventDistributionProcessing
	case payment.StatusCompleted:
		return shared.EventDistributionSettled
	default:
		return shared.EventDistributionFailed
	}
}
