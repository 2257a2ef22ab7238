package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"

	"github.com/shopspring/decimal"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD PAYMENT COMMAND
// Builds a pending distribution for a student's payment, using the course's
// commission split (or the platform default), and stores it.
// ══════════════════════════════════════════════════════════════════════════════

// RecordPaymentCommand contains the payment to record.
type RecordPaymentCommand struct {
	CourseID  string
	StudentID string
	Amount    decimal.Decimal
	Method    payment.Method

	// Only for MethodInstallment.
	InstallmentNumber int
	TotalInstallments int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command. Amount and numbering are checked by the
// distributor, which reports them as configuration errors.
func (c RecordPaymentCommand) Validate() error {
	if strings.TrimSpace(c.CourseID) == "" || strings.TrimSpace(c.StudentID) == "" {
		return shared.NewDomainError("payment", "Record", shared.ErrInvalidID, "course_id and student_id are required")
	}
	return nil
}

// RecordPaymentHandler handles RecordPaymentCommand.
type RecordPaymentHandler struct {
	courses       course.Repository
	distributions payment.DistributionRepository
	distributor   *payment.Distributor
	cache         payment.EarningsCache // Optional cache for invalidation
	publisher     shared.EventPublisher
	log           *logger.Logger
}

// NewRecordPaymentHandler creates a new RecordPaymentHandler.
func NewRecordPaymentHandler(
	courses course.Repository,
	distributions payment.DistributionRepository,
	distributor *payment.Distributor,
	cache payment.EarningsCache,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RecordPaymentHandler {
	return &RecordPaymentHandler{
		courses:       courses,
		distributions: distributions,
		distributor:   distributor,
		cache:         cache,
		publisher:     publisherOrNop(publisher),
		log:           loggerOrNop(log).With(logger.Component("record_payment")),
	}
}

// Handle executes the record payment command.
func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*payment.Distribution, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_payment: %w", err)
	}

	c, err := h.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("record_payment: %w", err)
	}

	d, err := h.distributor.Build(payment.BuildRequest{
		CourseID:          c.ID,
		MentorID:          c.MentorID,
		StudentID:         cmd.StudentID,
		Amount:            cmd.Amount,
		Course:            c,
		Method:            cmd.Method,
		InstallmentNumber: cmd.InstallmentNumber,
		TotalInstallments: cmd.TotalInstallments,
	})
	if err != nil {
		return nil, fmt.Errorf("record_payment: %w", err)
	}

	if err := h.distributions.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("record_payment: failed to save: %w", err)
	}

	invalidateEarnings(ctx, h.cache, h.log, d.MentorID)

	event := shared.NewDistributionEvent(shared.EventDistributionCreated, d.ID, d.MentorID, d.CourseID,
		string(d.Status), d.Amount.String(), d.MentorCut.String(), d.CreatedAt)
	event.CorrelationID = cmd.CorrelationID
	publish(h.publisher, h.log, event)

	h.log.Info("payment recorded",
		logger.DistributionID(d.ID),
		logger.CourseID(d.CourseID),
		logger.MentorID(d.MentorID),
		logger.Amount(d.Amount),
		logger.String("method", string(d.Method)),
	)

	return d, nil
}

func invalidateEarnings(ctx context.Context, cache payment.EarningsCache, log *logger.Logger, mentorID string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, mentorID); err != nil {
		log.Warn("failed to invalidate earnings cache", logger.MentorID(mentorID), logger.Err(err))
	}
}
