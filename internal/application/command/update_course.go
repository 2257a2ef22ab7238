package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"

	"github.com/shopspring/decimal"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE COURSE COMMAND
// Applies a partial update and re-runs the validation gate on the result.
// The tier is re-derived, so a duration change can add or drop the vacancy
// requirement.
// ══════════════════════════════════════════════════════════════════════════════

// CoursePatch contains optional updates. nil means "don't change".
type CoursePatch struct {
	Title        *string
	Description  *string
	Price        *decimal.Decimal
	DurationText *string
	VacancyID    *string

	// Commission replaces the split when set. ClearCommission reverts the
	// course to the platform default.
	Commission      *course.CommissionSplit
	ClearCommission bool
}

// UpdateCourseCommand contains the data to update a course.
type UpdateCourseCommand struct {
	CourseID string
	Patch    CoursePatch

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UpdateCourseCommand) Validate() error {
	if strings.TrimSpace(c.CourseID) == "" {
		return shared.NewDomainError("course", "Update", shared.ErrInvalidID, "course_id is required")
	}
	if c.Patch.Commission != nil {
		return c.Patch.Commission.Validate()
	}
	return nil
}

func (p CoursePatch) apply(d course.Draft) course.Draft {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Price != nil {
		d.Price = p.Price
	}
	if p.DurationText != nil {
		d.DurationText = *p.DurationText
	}
	if p.VacancyID != nil {
		d.VacancyID = *p.VacancyID
	}
	switch {
	case p.ClearCommission:
		d.Commission = nil
	case p.Commission != nil:
		split := *p.Commission
		d.Commission = &split
	}
	return d
}

// UpdateCourseHandler handles UpdateCourseCommand.
type UpdateCourseHandler struct {
	courses   course.Repository
	publisher shared.EventPublisher
	clock     shared.Clock
	log       *logger.Logger
}

// NewUpdateCourseHandler creates a new UpdateCourseHandler.
func NewUpdateCourseHandler(
	courses course.Repository,
	publisher shared.EventPublisher,
	clock shared.Clock,
	log *logger.Logger,
) *UpdateCourseHandler {
	return &UpdateCourseHandler{
		courses:   courses,
		publisher: publisherOrNop(publisher),
		clock:     clockOrSystem(clock),
		log:       loggerOrNop(log).With(logger.Component("update_course")),
	}
}

// Handle executes the update course command.
func (h *UpdateCourseHandler) Handle(ctx context.Context, cmd UpdateCourseCommand) (*CourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_course: %w", err)
	}

	existing, err := h.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("update_course: %w", err)
	}

	draft := cmd.Patch.apply(course.DraftFromCourse(existing))

	validation := course.Validate(draft)
	if !validation.Valid {
		return &CourseResult{Validation: validation}, nil
	}

	now := h.clock.Now()
	updated := draft.ToCourse(existing.ID, now)
	updated.CreatedAt = existing.CreatedAt

	if err := h.courses.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update_course: failed to save: %w", err)
	}

	event := shared.NewCourseSavedEvent(false, updated.ID, updated.MentorID, string(updated.Category), updated.Price.String(), now)
	event.CorrelationID = cmd.CorrelationID
	publish(h.publisher, h.log, event)

	if existing.Category != updated.Category {
		h.log.Info("course tier changed",
			logger.CourseID(updated.ID),
			logger.String("from", string(existing.Category)),
			logger.String("to", string(updated.Category)),
		)
	}

	return &CourseResult{Course: updated, Validation: validation}, nil
}
