package course

import "context"

// Repository persists accepted courses. Implementations live in
// infrastructure/persistence.
type Repository interface {
	// Create stores a new course.
	// Returns shared.ErrCourseAlreadyExists if the ID is taken.
	Create(ctx context.Context, c *Course) error

	// Update overwrites a stored course.
	// Returns shared.ErrCourseNotFound if the course does not exist.
	Update(ctx context.Context, c *Course) error

	// GetByID returns a course by ID.
	// Returns shared.ErrCourseNotFound if the course does not exist.
	GetByID(ctx context.Context, id string) (*Course, error)

	// ListByMentor returns the courses owned by a mentor.
	ListByMentor(ctx context.Context, mentorID string) ([]*Course, error)
}
