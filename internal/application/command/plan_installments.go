package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAN INSTALLMENTS COMMAND
// Splits the course price into dated installments for one student and
// stores the schedule. An enrollment has at most one schedule.
// ══════════════════════════════════════════════════════════════════════════════

// PlanInstallmentsCommand contains the plan request.
type PlanInstallmentsCommand struct {
	CourseID  string
	StudentID string
	Count     int

	// StartDate defaults to now.
	StartDate *time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command. Count is checked by the scheduler.
func (c PlanInstallmentsCommand) Validate() error {
	if strings.TrimSpace(c.CourseID) == "" || strings.TrimSpace(c.StudentID) == "" {
		return shared.NewDomainError("payment", "PlanInstallments", shared.ErrInvalidID, "course_id and student_id are required")
	}
	return nil
}

// PlanInstallmentsHandler handles PlanInstallmentsCommand.
type PlanInstallmentsHandler struct {
	courses      course.Repository
	installments payment.InstallmentRepository
	publisher    shared.EventPublisher
	clock        shared.Clock
	ids          shared.IDGenerator
	log          *logger.Logger
}

// NewPlanInstallmentsHandler creates a new PlanInstallmentsHandler.
func NewPlanInstallmentsHandler(
	courses course.Repository,
	installments payment.InstallmentRepository,
	publisher shared.EventPublisher,
	clock shared.Clock,
	ids shared.IDGenerator,
	log *logger.Logger,
) *PlanInstallmentsHandler {
	return &PlanInstallmentsHandler{
		courses:      courses,
		installments: installments,
		publisher:    publisherOrNop(publisher),
		clock:        clockOrSystem(clock),
		ids:          ids,
		log:          loggerOrNop(log).With(logger.Component("plan_installments")),
	}
}

// Handle executes the plan installments command.
func (h *PlanInstallmentsHandler) Handle(ctx context.Context, cmd PlanInstallmentsCommand) ([]*payment.Installment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("plan_installments: %w", err)
	}

	c, err := h.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("plan_installments: %w", err)
	}

	now := h.clock.Now()
	start := now
	if cmd.StartDate != nil {
		start = *cmd.StartDate
	}

	entries, err := payment.BuildInstallmentSchedule(c.Price, cmd.Count, start)
	if err != nil {
		return nil, fmt.Errorf("plan_installments: %w", err)
	}
	if err := payment.RequirePayable(entries); err != nil {
		return nil, fmt.Errorf("plan_installments: %w", err)
	}

	items := payment.NewInstallments(payment.Enrollment{
		CourseID:  c.ID,
		StudentID: cmd.StudentID,
		MentorID:  c.MentorID,
	}, entries, h.ids, now)

	if err := h.installments.SaveSchedule(ctx, items); err != nil {
		return nil, fmt.Errorf("plan_installments: failed to save: %w", err)
	}

	last := items[len(items)-1]
	event := shared.NewInstallmentEvent(shared.EventInstallmentsPlanned, c.ID, cmd.StudentID,
		last.Number, last.TotalInstallments, c.Price.String(), last.DueDate, now)
	event.CorrelationID = cmd.CorrelationID
	publish(h.publisher, h.log, event)

	h.log.Info("installments planned",
		logger.CourseID(c.ID),
		logger.StudentID(cmd.StudentID),
		logger.Int("count", len(items)),
		logger.Amount(c.Price),
	)

	return items, nil
}
