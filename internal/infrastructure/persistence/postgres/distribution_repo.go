package postgres

import (
	"context"
	"fmt"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DistributionRepository implements payment.DistributionRepository using PostgreSQL.
type DistributionRepository struct {
	conn *Connection
}

// NewDistributionRepository creates a new DistributionRepository.
func NewDistributionRepository(conn *Connection) *DistributionRepository {
	return &DistributionRepository{conn: conn}
}

const distributionColumns = `
	id, course_id, mentor_id, student_id, amount::text,
	commission_platform::text, commission_mentor::text, platform_cut::text, mentor_cut::text,
	payment_method, installment_number, total_installments, status,
	created_at, updated_at, distributed_at`

// Create stores a new distribution.
func (r *DistributionRepository) Create(ctx context.Context, d *payment.Distribution) error {
	query := `
		INSERT INTO payment_distributions (
			id, course_id, mentor_id, student_id, amount,
			commission_platform, commission_mentor, platform_cut, mentor_cut,
			payment_method, installment_number, total_installments, status,
			created_at, updated_at, distributed_at
		) VALUES (
			$1, $2, $3, $4, $5::numeric,
			$6::numeric, $7::numeric, $8::numeric, $9::numeric,
			$10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := r.conn.Exec(ctx, query,
		d.ID,
		d.CourseID,
		d.MentorID,
		d.StudentID,
		numericArg(d.Amount),
		numericArg(d.Commission.Platform),
		numericArg(d.Commission.Mentor),
		numericArg(d.PlatformCut),
		numericArg(d.MentorCut),
		string(d.Method),
		nullInt(d.InstallmentNumber),
		nullInt(d.TotalInstallments),
		string(d.Status),
		d.CreatedAt,
		d.UpdatedAt,
		d.DistributedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDistributionExists
		}
		return fmt.Errorf("failed to create distribution: %w", err)
	}
	return nil
}

// GetByID returns a distribution by ID.
func (r *DistributionRepository) GetByID(ctx context.Context, id string) (*payment.Distribution, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+distributionColumns+` FROM payment_distributions WHERE id = $1`, id)
	return scanDistribution(row)
}

// UpdateStatus writes the new status only while the stored status equals
// expected.
func (r *DistributionRepository) UpdateStatus(ctx context.Context, expected payment.Status, d *payment.Distribution) error {
	query := `
		UPDATE payment_distributions SET
			status = $1,
			updated_at = $2,
			distributed_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.conn.Exec(ctx, query,
		string(d.Status),
		d.UpdatedAt,
		d.DistributedAt,
		d.ID,
		string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update distribution status: %w", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, d.ID); err != nil {
		return err
	}
	return shared.ErrDistributionConflict
}

// ListByMentor returns a mentor's distributions, newest first.
func (r *DistributionRepository) ListByMentor(ctx context.Context, mentorID string) ([]*payment.Distribution, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT `+distributionColumns+` FROM payment_distributions WHERE mentor_id = $1 ORDER BY created_at DESC, id`,
		mentorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query distributions by mentor: %w", err)
	}
	defer rows.Close()

	out := make([]*payment.Distribution, 0)
	for rows.Next() {
		d, err := scanDistribution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func scanDistribution(row pgx.Row) (*payment.Distribution, error) {
	var (
		d                        payment.Distribution
		amount, platform, mentor string
		platformCut, mentorCut   string
		method, status           string
		number, total            *int
	)

	err := row.Scan(
		&d.ID,
		&d.CourseID,
		&d.MentorID,
		&d.StudentID,
		&amount,
		&platform,
		&mentor,
		&platformCut,
		&mentorCut,
		&method,
		&number,
		&total,
		&status,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.DistributedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrDistributionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan distribution: %w", err)
	}

	numerics := []struct {
		column string
		raw    string
		dst    *decimal.Decimal
	}{
		{"amount", amount, &d.Amount},
		{"commission_platform", platform, &d.Commission.Platform},
		{"commission_mentor", mentor, &d.Commission.Mentor},
		{"platform_cut", platformCut, &d.PlatformCut},
		{"mentor_cut", mentorCut, &d.MentorCut},
	}
	for _, n := range numerics {
		if *n.dst, err = parseNumeric(n.column, n.raw); err != nil {
			return nil, err
		}
	}

	d.Method = payment.Method(method)
	d.Status = payment.Status(status)
	if number != nil {
		d.InstallmentNumber = *number
	}
	if total != nil {
		d.TotalInstallments = *total
	}
	return &d, nil
}
