package payment

import (
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/shared"

	"github.com/shopspring/decimal"
)

// CadenceDays is the fixed spacing between installment due dates. Schedules
// are not calendar-month aware.
const CadenceDays = 30

// MaxInstallments bounds the number of entries in one schedule.
const MaxInstallments = 120

const cadence = time.Duration(CadenceDays) * 24 * time.Hour

// InstallmentEntry is one line of a schedule.
type InstallmentEntry struct {
	Number  int             `json:"installment_number"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

// BuildInstallmentSchedule splits total into n entries.
//
// Entries 1..n-1 get round(total/n, 2); entry n gets the exact remainder, so
// the amounts always add up to total. Entry i is due exactly (i-1)*30*24h after
// start, regardless of daylight saving changes in start's location.
func BuildInstallmentSchedule(total decimal.Decimal, n int, start time.Time) ([]InstallmentEntry, error) {
	const op = "BuildInstallmentSchedule"

	if n < 1 {
		return nil, shared.InvalidConfiguration("payment", op, "installment count must be at least 1 (got %d)", n)
	}
	if n > MaxInstallments {
		return nil, shared.InvalidConfiguration("payment", op, "installment count must be at most %d (got %d)", MaxInstallments, n)
	}
	if total.IsNegative() {
		return nil, shared.InvalidConfiguration("payment", op, "total must not be negative (got %s)", total)
	}
	if !IsCurrencyAmount(total) {
		return nil, shared.InvalidConfiguration("payment", op, "total must not have more than %d decimal places (got %s)", CurrencyPlaces, total)
	}

	count := decimal.NewFromInt(int64(n))
	base := Round(total.Div(count))
	last := total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))

	entries := make([]InstallmentEntry, n)
	for i := range entries {
		amount := base
		if i == n-1 {
			amount = last
		}
		entries[i] = InstallmentEntry{
			Number:  i + 1,
			Amount:  amount,
			DueDate: start.Add(time.Duration(i) * cadence),
		}
	}
	return entries, nil
}

// RequirePayable rejects a schedule with an entry that could never be paid.
// Small totals split into many entries can round the last one to zero or
// below.
func RequirePayable(entries []InstallmentEntry) error {
	for _, e := range entries {
		if !e.Amount.IsPositive() {
			return shared.InvalidConfiguration("payment", "RequirePayable",
				"installment %d of %d would be %s; use fewer installments", e.Number, len(entries), e.Amount)
		}
	}
	return nil
}

// ScheduleTotal sums the entry amounts.
func ScheduleTotal(entries []InstallmentEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// ═══════════════════════════════════════════════════════════════════════════
// Persisted installments
// ═══════════════════════════════════════════════════════════════════════════

// InstallmentStatus tracks whether an installment has been paid.
type InstallmentStatus string

const (
	InstallmentScheduled InstallmentStatus = "scheduled"
	InstallmentPaid      InstallmentStatus = "paid"
)

// Installment is a stored schedule entry for one enrollment.
type Installment struct {
	ID                string            `json:"id"`
	CourseID          string            `json:"course_id"`
	StudentID         string            `json:"student_id"`
	MentorID          string            `json:"mentor_id"`
	Number            int               `json:"installment_number"`
	TotalInstallments int               `json:"total_installments"`
	Amount            decimal.Decimal   `json:"amount"`
	DueDate           time.Time         `json:"due_date"`
	Status            InstallmentStatus `json:"status"`
	RemindedAt        *time.Time        `json:"reminded_at,omitempty"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// IsDue reports whether an unpaid installment falls due on or before t.
func (i *Installment) IsDue(t time.Time) bool {
	return i.Status == InstallmentScheduled && !i.DueDate.After(t)
}

// NeedsReminder reports whether the installment is unpaid, not yet reminded
// and due on or before the horizon.
func (i *Installment) NeedsReminder(horizon time.Time) bool {
	return i.RemindedAt == nil && i.IsDue(horizon)
}

// Enrollment identifies who pays for what.
type Enrollment struct {
	CourseID  string
	StudentID string
	MentorID  string
}

// NewInstallments turns schedule entries into stored installments. ids must
// return a fresh identifier per call.
func NewInstallments(e Enrollment, entries []InstallmentEntry, ids shared.IDGenerator, now time.Time) []*Installment {
	out := make([]*Installment, 0, len(entries))
	for _, entry := range entries {
		out = append(out, &Installment{
			ID:                ids.NewID(),
			CourseID:          e.CourseID,
			StudentID:         e.StudentID,
			MentorID:          e.MentorID,
			Number:            entry.Number,
			TotalInstallments: len(entries),
			Amount:            entry.Amount,
			DueDate:           entry.DueDate,
			Status:            InstallmentScheduled,
			CreatedAt:         now,
		})
	}
	return out
}
