package payment

import (
	"strings"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════
// Method & Status
// ═══════════════════════════════════════════════════════════════════════════

// Method is how the student pays for the course.
type Method string

const (
	MethodFull        Method = "full"
	MethodInstallment Method = "installment"
)

// IsValid checks if the method is known.
func (m Method) IsValid() bool {
	return m == MethodFull || m == MethodInstallment
}

// Status is the settlement state of a distribution.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsValid checks if the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus parses a status name.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.IsValid()
}

// transitions lists the allowed moves out of each non-terminal state.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ═══════════════════════════════════════════════════════════════════════════
// Distribution
// ═══════════════════════════════════════════════════════════════════════════

// Distribution records how one payment is divided. It is immutable once its
// status is terminal.
type Distribution struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	MentorID  string `json:"mentor_id"`
	StudentID string `json:"student_id"`

	Amount      decimal.Decimal        `json:"amount"`
	Commission  course.CommissionSplit `json:"commission"`
	PlatformCut decimal.Decimal        `json:"platform_cut"`
	MentorCut   decimal.Decimal        `json:"mentor_cut"`

	Method Method `json:"payment_method"`

	// Zero unless Method is MethodInstallment.
	InstallmentNumber int `json:"installment_number,omitempty"`
	TotalInstallments int `json:"total_installments,omitempty"`

	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DistributedAt *time.Time `json:"distributed_at,omitempty"`
}

// IsInstallment reports whether the distribution covers one installment.
func (d *Distribution) IsInstallment() bool {
	return d.Method == MethodInstallment
}

// BuildRequest carries the inputs of a new distribution.
type BuildRequest struct {
	CourseID  string
	MentorID  string
	StudentID string
	Amount    decimal.Decimal

	// Course supplies the commission split. When nil, or when the course has
	// no split of its own, the default split applies.
	Course *course.Course

	Method            Method
	InstallmentNumber int
	TotalInstallments int
}

// BuildDistribution creates a pending distribution.
//
// It fails with shared.ErrInvalidConfiguration when the amount is not
// positive, the method is unknown, the installment numbering is inconsistent
// or the split does not sum to 100.
func BuildDistribution(req BuildRequest, id string, defaultSplit course.CommissionSplit, mode RoundingMode, now time.Time) (*Distribution, error) {
	const op = "BuildDistribution"

	if !req.Amount.IsPositive() {
		return nil, shared.InvalidConfiguration("payment", op, "amount must be positive (got %s)", req.Amount)
	}
	if !IsCurrencyAmount(req.Amount) {
		return nil, shared.InvalidConfiguration("payment", op, "amount must not have more than %d decimal places (got %s)", CurrencyPlaces, req.Amount)
	}
	if !req.Method.IsValid() {
		return nil, shared.InvalidConfiguration("payment", op, "unknown payment method %q", req.Method)
	}
	if err := checkInstallmentNumbering(req); err != nil {
		return nil, err
	}

	commission := defaultSplit
	if req.Course != nil && req.Course.Commission != nil {
		commission = *req.Course.Commission
	}

	split, err := SplitAmount(req.Amount, commission, mode)
	if err != nil {
		return nil, err
	}

	return &Distribution{
		ID:                id,
		CourseID:          req.CourseID,
		MentorID:          req.MentorID,
		StudentID:         req.StudentID,
		Amount:            req.Amount,
		Commission:        commission,
		PlatformCut:       split.PlatformCut,
		MentorCut:         split.MentorCut,
		Method:            req.Method,
		InstallmentNumber: req.InstallmentNumber,
		TotalInstallments: req.TotalInstallments,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func checkInstallmentNumbering(req BuildRequest) error {
	const op = "BuildDistribution"

	if req.Method == MethodFull {
		if req.InstallmentNumber != 0 || req.TotalInstallments != 0 {
			return shared.InvalidConfiguration("payment", op, "full payments carry no installment numbering")
		}
		return nil
	}
	if req.TotalInstallments < 1 {
		return shared.InvalidConfiguration("payment", op, "total installments must be at least 1 (got %d)", req.TotalInstallments)
	}
	if req.InstallmentNumber < 1 || req.InstallmentNumber > req.TotalInstallments {
		return shared.InvalidConfiguration("payment", op,
			"installment number %d outside 1..%d", req.InstallmentNumber, req.TotalInstallments)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Transitions
// ═══════════════════════════════════════════════════════════════════════════

// MarkProcessing moves a pending distribution to processing.
func MarkProcessing(d Distribution, now time.Time) (Distribution, bool) {
	return transition(d, StatusProcessing, now)
}

// Settle completes a pending or processing distribution and stamps
// DistributedAt. The gateway call that moves the funds happens elsewhere.
func Settle(d Distribution, now time.Time) (Distribution, bool) {
	return transition(d, StatusCompleted, now)
}

// Fail moves any in-flight distribution to failed.
func Fail(d Distribution, now time.Time) (Distribution, bool) {
	return transition(d, StatusFailed, now)
}

func transition(d Distribution, to Status, now time.Time) (Distribution, bool) {
	if !CanTransition(d.Status, to) {
		return d, false
	}
	d.Status = to
	d.UpdatedAt = now
	if to == StatusCompleted {
		at := now
		d.DistributedAt = &at
	}
	return d, true
}

// ═══════════════════════════════════════════════════════════════════════════
// Distributor
// ═══════════════════════════════════════════════════════════════════════════

// DistributorConfig configures a Distributor.
type DistributorConfig struct {
	DefaultSplit course.CommissionSplit
	Rounding     RoundingMode
}

// DefaultDistributorConfig returns the 30/70 split with independent rounding.
func DefaultDistributorConfig() DistributorConfig {
	return DistributorConfig{
		DefaultSplit: course.DefaultCommissionSplit(),
		Rounding:     DefaultRoundingMode,
	}
}

// Distributor binds the pure functions to a clock and an ID source.
type Distributor struct {
	cfg   DistributorConfig
	clock shared.Clock
	ids   shared.IDGenerator
}

// NewDistributor creates a new Distributor. The default split is validated
// here so a misconfigured deployment fails at startup.
func NewDistributor(cfg DistributorConfig, clock shared.Clock, ids shared.IDGenerator) (*Distributor, error) {
	if cfg.Rounding == "" {
		cfg.Rounding = DefaultRoundingMode
	}
	if _, ok := ParseRoundingMode(string(cfg.Rounding)); !ok {
		return nil, shared.InvalidConfiguration("payment", "NewDistributor", "unknown rounding mode %q", cfg.Rounding)
	}
	if err := cfg.DefaultSplit.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Distributor{cfg: cfg, clock: clock, ids: ids}, nil
}

// Rounding returns the configured rounding mode.
func (d *Distributor) Rounding() RoundingMode {
	return d.cfg.Rounding
}

// DefaultSplit returns the split used for courses without their own.
func (d *Distributor) DefaultSplit() course.CommissionSplit {
	return d.cfg.DefaultSplit
}

// ResolveSplit returns the split that applies to c.
func (d *Distributor) ResolveSplit(c *course.Course) course.CommissionSplit {
	if c != nil && c.Commission != nil {
		return *c.Commission
	}
	return d.cfg.DefaultSplit
}

// Preview splits an amount without building a record.
func (d *Distributor) Preview(amount decimal.Decimal, split course.CommissionSplit) (Split, error) {
	return SplitAmount(amount, split, d.cfg.Rounding)
}

// Build creates a pending distribution with a fresh ID.
func (d *Distributor) Build(req BuildRequest) (*Distribution, error) {
	return BuildDistribution(req, d.ids.NewID(), d.cfg.DefaultSplit, d.cfg.Rounding, d.clock.Now())
}

// MarkProcessing applies MarkProcessing at the current instant.
func (d *Distributor) MarkProcessing(dist Distribution) (Distribution, bool) {
	return MarkProcessing(dist, d.clock.Now())
}

// Settle applies Settle at the current instant.
func (d *Distributor) Settle(dist Distribution) (Distribution, bool) {
	return Settle(dist, d.clock.Now())
}

// Fail applies Fail at the current instant.
func (d *Distributor) Fail(dist Distribution) (Distribution, bool) {
	return Fail(dist, d.clock.Now())
}
