package postgres

import (
	"context"
	"fmt"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// CourseRepository implements course.Repository using PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

const courseColumns = `
	id, mentor_id, title, description, price::text, duration_text, course_category,
	commission_platform::text, commission_mentor::text, vacancy_id, created_at, updated_at`

// Create stores a new course.
func (r *CourseRepository) Create(ctx context.Context, c *course.Course) error {
	query := `
		INSERT INTO courses (
			id, mentor_id, title, description, price, duration_text, course_category,
			commission_platform, commission_mentor, vacancy_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8::numeric, $9::numeric, $10, $11, $12)
	`

	platform, mentor := commissionArgs(c.Commission)
	_, err := r.conn.Exec(ctx, query,
		c.ID,
		c.MentorID,
		c.Title,
		c.Description,
		numericArg(c.Price),
		c.DurationText,
		string(c.Category),
		platform,
		mentor,
		nullString(c.VacancyID),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrCourseAlreadyExists
		}
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// Update overwrites a stored course.
func (r *CourseRepository) Update(ctx context.Context, c *course.Course) error {
	query := `
		UPDATE courses SET
			title = $1,
			description = $2,
			price = $3::numeric,
			duration_text = $4,
			course_category = $5,
			commission_platform = $6::numeric,
			commission_mentor = $7::numeric,
			vacancy_id = $8,
			updated_at = $9
		WHERE id = $10
	`

	platform, mentor := commissionArgs(c.Commission)
	result, err := r.conn.Exec(ctx, query,
		c.Title,
		c.Description,
		numericArg(c.Price),
		c.DurationText,
		string(c.Category),
		platform,
		mentor,
		nullString(c.VacancyID),
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCourseNotFound
	}
	return nil
}

// GetByID returns a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*course.Course, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	return scanCourse(row)
}

// ListByMentor returns the courses owned by a mentor, oldest first.
func (r *CourseRepository) ListByMentor(ctx context.Context, mentorID string) ([]*course.Course, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE mentor_id = $1 ORDER BY created_at, id`,
		mentorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses by mentor: %w", err)
	}
	defer rows.Close()

	courses := make([]*course.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func commissionArgs(split *course.CommissionSplit) (*string, *string) {
	if split == nil {
		return nil, nil
	}
	return nullableNumericArg(&split.Platform), nullableNumericArg(&split.Mentor)
}

func scanCourse(row pgx.Row) (*course.Course, error) {
	var (
		c                course.Course
		price, category  string
		platform, mentor *string
		vacancyID        *string
	)

	err := row.Scan(
		&c.ID,
		&c.MentorID,
		&c.Title,
		&c.Description,
		&price,
		&c.DurationText,
		&category,
		&platform,
		&mentor,
		&vacancyID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	if c.Price, err = parseNumeric("price", price); err != nil {
		return nil, err
	}
	c.Category = course.Tier(category)
	if vacancyID != nil {
		c.VacancyID = *vacancyID
	}
	if platform != nil && mentor != nil {
		var split course.CommissionSplit
		if split.Platform, err = parseNumeric("commission_platform", *platform); err != nil {
			return nil, err
		}
		if split.Mentor, err = parseNumeric("commission_mentor", *mentor); err != nil {
			return nil, err
		}
		c.Commission = &split
	}
	return &c, nil
}
