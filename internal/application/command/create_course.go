// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE COURSE COMMAND
// Runs a mentor's draft through the validation gate, attaches the derived
// tier and stores the course.
// ══════════════════════════════════════════════════════════════════════════════

// CreateCourseCommand contains the draft to accept.
type CreateCourseCommand struct {
	Draft course.Draft

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate checks what the validation gate does not: ownership and the
// commission split invariant.
func (c CreateCourseCommand) Validate() error {
	if strings.TrimSpace(c.Draft.MentorID) == "" {
		return shared.NewDomainError("course", "Create", shared.ErrInvalidInput, "mentor_id is required")
	}
	return checkCommission(c.Draft)
}

func checkCommission(d course.Draft) error {
	if d.Commission == nil {
		return nil
	}
	return d.Commission.Validate()
}

// CourseResult is returned by create and update. When Validation is not
// valid, Course is nil and nothing was stored.
type CourseResult struct {
	Course     *course.Course
	Validation course.ValidationResult
}

// Accepted reports whether the draft passed the gate.
func (r *CourseResult) Accepted() bool {
	return r.Validation.Valid
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreateCourseHandler handles CreateCourseCommand.
type CreateCourseHandler struct {
	courses   course.Repository
	publisher shared.EventPublisher
	clock     shared.Clock
	ids       shared.IDGenerator
	log       *logger.Logger
}

// NewCreateCourseHandler creates a new CreateCourseHandler.
func NewCreateCourseHandler(
	courses course.Repository,
	publisher shared.EventPublisher,
	clock shared.Clock,
	ids shared.IDGenerator,
	log *logger.Logger,
) *CreateCourseHandler {
	return &CreateCourseHandler{
		courses:   courses,
		publisher: publisherOrNop(publisher),
		clock:     clockOrSystem(clock),
		ids:       ids,
		log:       loggerOrNop(log).With(logger.Component("create_course")),
	}
}

// Handle executes the create course command.
func (h *CreateCourseHandler) Handle(ctx context.Context, cmd CreateCourseCommand) (*CourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_course: %w", err)
	}

	validation := course.Validate(cmd.Draft)
	if !validation.Valid {
		h.log.Debug("course draft rejected",
			logger.MentorID(cmd.Draft.MentorID),
			logger.Any("errors", validation.Errors),
		)
		return &CourseResult{Validation: validation}, nil
	}

	id := strings.TrimSpace(cmd.Draft.ID)
	if id == "" {
		id = h.ids.NewID()
	}

	c := cmd.Draft.ToCourse(id, h.clock.Now())
	if err := h.courses.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create_course: failed to save: %w", err)
	}

	event := shared.NewCourseSavedEvent(true, c.ID, c.MentorID, string(c.Category), c.Price.String(), c.CreatedAt)
	event.CorrelationID = cmd.CorrelationID
	publish(h.publisher, h.log, event)

	h.log.Info("course created",
		logger.CourseID(c.ID),
		logger.MentorID(c.MentorID),
		logger.Tier(string(c.Category)),
	)

	return &CourseResult{Course: c, Validation: validation}, nil
}
