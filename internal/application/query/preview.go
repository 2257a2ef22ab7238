package query

import (
	"context"
	"strings"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/payment"

	"github.com/shopspring/decimal"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREVIEWS
// Compute splits and schedules without storing anything.
// ══════════════════════════════════════════════════════════════════════════════

// PreviewSplitQuery asks how an amount would be divided. The split comes
// from, in order: Split, the course identified by CourseID, the platform
// default.
type PreviewSplitQuery struct {
	Amount   decimal.Decimal
	CourseID string
	Split    *course.CommissionSplit
}

// SplitDTO is a previewed split.
type SplitDTO struct {
	payment.Split
	Rounding    payment.RoundingMode `json:"rounding"`
	Discrepancy decimal.Decimal      `json:"discrepancy"`
}

// PreviewSplitHandler handles PreviewSplitQuery.
type PreviewSplitHandler struct {
	courses     course.Repository
	distributor *payment.Distributor
}

// NewPreviewSplitHandler creates a new PreviewSplitHandler.
func NewPreviewSplitHandler(courses course.Repository, distributor *payment.Distributor) *PreviewSplitHandler {
	return &PreviewSplitHandler{courses: courses, distributor: distributor}
}

// Handle executes the query.
func (h *PreviewSplitHandler) Handle(ctx context.Context, q PreviewSplitQuery) (*SplitDTO, error) {
	split := h.distributor.DefaultSplit()
	switch {
	case q.Split != nil:
		split = *q.Split
	case strings.TrimSpace(q.CourseID) != "":
		c, err := h.courses.GetByID(ctx, q.CourseID)
		if err != nil {
			return nil, err
		}
		split = h.distributor.ResolveSplit(c)
	}

	s, err := h.distributor.Preview(q.Amount, split)
	if err != nil {
		return nil, err
	}
	return &SplitDTO{Split: s, Rounding: h.distributor.Rounding(), Discrepancy: s.Discrepancy()}, nil
}

// ScheduleDTO is a previewed installment schedule.
type ScheduleDTO struct {
	Total       decimal.Decimal            `json:"total"`
	CadenceDays int                        `json:"cadence_days"`
	Entries     []payment.InstallmentEntry `json:"entries"`
}

// PreviewInstallments builds a schedule without storing it.
func PreviewInstallments(total decimal.Decimal, count int, start time.Time) (*ScheduleDTO, error) {
	entries, err := payment.BuildInstallmentSchedule(total, count, start)
	if err != nil {
		return nil, err
	}
	return &ScheduleDTO{Total: total, CadenceDays: payment.CadenceDays, Entries: entries}, nil
}
