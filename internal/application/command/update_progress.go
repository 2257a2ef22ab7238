package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evolvix-software/course-economics/internal/domain/certificate"
	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROGRESS COMMAND
// Records a student's progress percentage for a course.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProgressCommand contains the new percentage.
type UpdateProgressCommand struct {
	CourseID   string
	StudentID  string
	Percentage float64
}

// Validate validates the command.
func (c UpdateProgressCommand) Validate() error {
	if strings.TrimSpace(c.CourseID) == "" || strings.TrimSpace(c.StudentID) == "" {
		return shared.NewDomainError("certificate", "UpdateProgress", shared.ErrInvalidID, "course_id and student_id are required")
	}
	if c.Percentage < 0 || c.Percentage > 100 {
		return shared.NewDomainError("certificate", "UpdateProgress", shared.ErrValueOutOfRange, "percentage must be between 0 and 100")
	}
	return nil
}

// UpdateProgressHandler handles UpdateProgressCommand.
type UpdateProgressHandler struct {
	courses  course.Repository
	progress certificate.Repository
	clock    shared.Clock
	log      *logger.Logger
}

// NewUpdateProgressHandler creates a new UpdateProgressHandler.
func NewUpdateProgressHandler(
	courses course.Repository,
	progress certificate.Repository,
	clock shared.Clock,
	log *logger.Logger,
) *UpdateProgressHandler {
	return &UpdateProgressHandler{
		courses:  courses,
		progress: progress,
		clock:    clockOrSystem(clock),
		log:      loggerOrNop(log).With(logger.Component("update_progress")),
	}
}

// Handle executes the update progress command.
func (h *UpdateProgressHandler) Handle(ctx context.Context, cmd UpdateProgressCommand) (*certificate.Progress, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_progress: %w", err)
	}

	if _, err := h.courses.GetByID(ctx, cmd.CourseID); err != nil {
		return nil, fmt.Errorf("update_progress: %w", err)
	}

	now := h.clock.Now()

	current, err := h.progress.Get(ctx, cmd.CourseID, cmd.StudentID)
	var next certificate.Progress
	switch {
	case errors.Is(err, shared.ErrNotFound):
		next = certificate.NewProgress(cmd.StudentID, cmd.CourseID, cmd.Percentage, now)
	case err != nil:
		return nil, fmt.Errorf("update_progress: %w", err)
	default:
		next = current.WithPercentage(cmd.Percentage, now)
	}

	if err := h.progress.SavePercentage(ctx, &next); err != nil {
		return nil, fmt.Errorf("update_progress: failed to save: %w", err)
	}

	h.log.Debug("progress updated",
		logger.CourseID(cmd.CourseID),
		logger.StudentID(cmd.StudentID),
		logger.Float64("percentage", next.ProgressPercentage),
	)
	return &next, nil
}
