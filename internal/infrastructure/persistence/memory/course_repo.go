package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

// CourseRepository implements course.Repository.
type CourseRepository struct {
	mu      sync.RWMutex
	courses map[string]course.Course
}

// NewCourseRepository creates an empty repository.
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{courses: make(map[string]course.Course)}
}

// Create stores a new course.
func (r *CourseRepository) Create(_ context.Context, c *course.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[c.ID]; ok {
		return shared.ErrCourseAlreadyExists
	}
	r.courses[c.ID] = copyCourse(c)
	return nil
}

// Update overwrites a stored course.
func (r *CourseRepository) Update(_ context.Context, c *course.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[c.ID]; !ok {
		return shared.ErrCourseNotFound
	}
	r.courses[c.ID] = copyCourse(c)
	return nil
}

// GetByID returns a course by ID.
func (r *CourseRepository) GetByID(_ context.Context, id string) (*course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	out := copyCourse(&c)
	return &out, nil
}

// ListByMentor returns the mentor's courses, oldest first.
func (r *CourseRepository) ListByMentor(_ context.Context, mentorID string) ([]*course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*course.Course, 0)
	for _, c := range r.courses {
		if c.MentorID == mentorID {
			cp := copyCourse(&c)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func copyCourse(c *course.Course) course.Course {
	out := *c
	if c.Commission != nil {
		split := *c.Commission
		out.Commission = &split
	}
	return out
}
