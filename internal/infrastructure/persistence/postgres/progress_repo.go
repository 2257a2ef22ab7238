package postgres

import (
	"context"
	"fmt"

	"github.com/evolvix-software/course-economics/internal/domain/certificate"
	"github.com/evolvix-software/course-economics/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ProgressRepository implements certificate.Repository using PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

const progressColumns = `
	student_id, course_id, progress_percentage, certificate_issued, certificate_id,
	certificate_url, certificate_issued_at, mentor_signed, updated_at`

// Get returns the record for a pair.
func (r *ProgressRepository) Get(ctx context.Context, courseID, studentID string) (*certificate.Progress, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+progressColumns+` FROM course_progress WHERE course_id = $1 AND student_id = $2`,
		courseID, studentID,
	)
	return scanProgress(row)
}

// SavePercentage creates the record or updates its percentage. Issuance
// columns are never written here.
func (r *ProgressRepository) SavePercentage(ctx context.Context, p *certificate.Progress) error {
	query := `
		INSERT INTO course_progress (course_id, student_id, progress_percentage, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_id, student_id) DO UPDATE SET
			progress_percentage = EXCLUDED.progress_percentage,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.conn.Exec(ctx, query, p.CourseID, p.StudentID, p.ProgressPercentage, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// MarkIssued writes the issuance fields only while the row is not issued.
func (r *ProgressRepository) MarkIssued(ctx context.Context, p *certificate.Progress) error {
	query := `
		UPDATE course_progress SET
			certificate_issued = TRUE,
			certificate_id = $1,
			certificate_url = $2,
			certificate_issued_at = $3,
			mentor_signed = $4,
			updated_at = $5
		WHERE course_id = $6 AND student_id = $7 AND certificate_issued = FALSE
	`

	result, err := r.conn.Exec(ctx, query,
		p.CertificateID,
		p.CertificateURL,
		p.CertificateIssuedAt,
		p.MentorSigned,
		p.UpdatedAt,
		p.CourseID,
		p.StudentID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark certificate issued: %w", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	// Either the row is missing or someone else issued first.
	if _, err := r.Get(ctx, p.CourseID, p.StudentID); err != nil {
		return err
	}
	return certificate.ErrAlreadyIssued
}

// ListByStudent returns a student's records ordered by course.
func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID string) ([]*certificate.Progress, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT `+progressColumns+` FROM course_progress WHERE student_id = $1 ORDER BY course_id`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress by student: %w", err)
	}
	defer rows.Close()

	out := make([]*certificate.Progress, 0)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProgress(row pgx.Row) (*certificate.Progress, error) {
	var (
		p             certificate.Progress
		certificateID *string
		url           *string
	)

	err := row.Scan(
		&p.StudentID,
		&p.CourseID,
		&p.ProgressPercentage,
		&p.CertificateIssued,
		&certificateID,
		&url,
		&p.CertificateIssuedAt,
		&p.MentorSigned,
		&p.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan progress: %w", err)
	}

	if certificateID != nil {
		p.CertificateID = *certificateID
	}
	if url != nil {
		p.CertificateURL = *url
	}
	return &p, nil
}
