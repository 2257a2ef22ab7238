package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/payment"

	"github.com/jackc/pgx/v5"
)

// InstallmentRepository implements payment.InstallmentRepository using PostgreSQL.
type InstallmentRepository struct {
	conn *Connection
}

// NewInstallmentRepository creates a new InstallmentRepository.
func NewInstallmentRepository(conn *Connection) *InstallmentRepository {
	return &InstallmentRepository{conn: conn}
}

const installmentColumns = `
	id, course_id, student_id, mentor_id, installment_number, total_installments,
	amount::text, due_date, status, reminded_at, paid_at, created_at`

// SaveSchedule stores every entry of a schedule in one transaction.
func (r *InstallmentRepository) SaveSchedule(ctx context.Context, items []*payment.Installment) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO installments (
			id, course_id, student_id, mentor_id, installment_number, total_installments,
			amount, due_date, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)
	`

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		for _, it := range items {
			_, err := tx.Exec(ctx, query,
				it.ID,
				it.CourseID,
				it.StudentID,
				it.MentorID,
				it.Number,
				it.TotalInstallments,
				numericArg(it.Amount),
				it.DueDate,
				string(it.Status),
				it.CreatedAt,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return payment.ErrScheduleExists
		}
		return fmt.Errorf("failed to save installment schedule: %w", err)
	}
	return nil
}

// ListByEnrollment returns a schedule ordered by number.
func (r *InstallmentRepository) ListByEnrollment(ctx context.Context, courseID, studentID string) ([]*payment.Installment, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT `+installmentColumns+` FROM installments
		 WHERE course_id = $1 AND student_id = $2
		 ORDER BY installment_number`,
		courseID, studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	return scanInstallments(rows)
}

// ListNeedingReminder returns unpaid, unreminded installments due by
// horizon, oldest first.
func (r *InstallmentRepository) ListNeedingReminder(ctx context.Context, horizon time.Time, limit int) ([]*payment.Installment, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.conn.Query(ctx,
		`SELECT `+installmentColumns+` FROM installments
		 WHERE status = 'scheduled' AND reminded_at IS NULL AND due_date <= $1
		 ORDER BY due_date, id
		 LIMIT $2`,
		horizon, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due installments: %w", err)
	}
	return scanInstallments(rows)
}

// MarkReminded stamps reminded_at.
func (r *InstallmentRepository) MarkReminded(ctx context.Context, id string, at time.Time) error {
	result, err := r.conn.Exec(ctx, `UPDATE installments SET reminded_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark installment reminded: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payment.ErrInstallmentNotFound
	}
	return nil
}

// MarkPaid flips one scheduled installment to paid.
func (r *InstallmentRepository) MarkPaid(ctx context.Context, courseID, studentID string, number int, at time.Time) (bool, error) {
	result, err := r.conn.Exec(ctx,
		`UPDATE installments SET status = 'paid', paid_at = $1
		 WHERE course_id = $2 AND student_id = $3 AND installment_number = $4 AND status = 'scheduled'`,
		at, courseID, studentID, number,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark installment paid: %w", err)
	}
	if result.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	err = r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM installments WHERE course_id = $1 AND student_id = $2 AND installment_number = $3)`,
		courseID, studentID, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check installment: %w", err)
	}
	if !exists {
		return false, payment.ErrInstallmentNotFound
	}
	return false, nil
}

func scanInstallments(rows pgx.Rows) ([]*payment.Installment, error) {
	defer rows.Close()

	out := make([]*payment.Installment, 0)
	for rows.Next() {
		var (
			it             payment.Installment
			amount, status string
		)
		err := rows.Scan(
			&it.ID,
			&it.CourseID,
			&it.StudentID,
			&it.MentorID,
			&it.Number,
			&it.TotalInstallments,
			&amount,
			&it.DueDate,
			&status,
			&it.RemindedAt,
			&it.PaidAt,
			&it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		if it.Amount, err = parseNumeric("amount", amount); err != nil {
			return nil, err
		}
		it.Status = payment.InstallmentStatus(status)
		out = append(out, &it)
	}
	return out, rows.Err()
}
