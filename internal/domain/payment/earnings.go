package payment

import "github.com/shopspring/decimal"

// Earnings aggregates a mentor's cuts. Failed distributions are excluded.
type Earnings struct {
	MentorID  string          `json:"mentor_id"`
	Total     decimal.Decimal `json:"total_earnings"`
	Pending   decimal.Decimal `json:"pending_earnings"`
	Completed decimal.Decimal `json:"completed_earnings"`

	// Distributions counts the records that contributed.
	Distributions int `json:"distributions"`
}

// SummarizeMentorEarnings sums MentorCut over the mentor's distributions.
// Pending and processing records count as pending; completed records count
// as completed. Records of other mentors are ignored.
func SummarizeMentorEarnings(ds []*Distribution, mentorID string) Earnings {
	e := Earnings{
		MentorID:  mentorID,
		Total:     decimal.Zero,
		Pending:   decimal.Zero,
		Completed: decimal.Zero,
	}

	for _, d := range ds {
		if d == nil || d.MentorID != mentorID {
			continue
		}
		switch d.Status {
		case StatusCompleted:
			e.Completed = e.Completed.Add(d.MentorCut)
		case StatusPending, StatusProcessing:
			e.Pending = e.Pending.Add(d.MentorCut)
		default:
			continue
		}
		e.Distributions++
	}

	e.Total = e.Pending.Add(e.Completed)
	return e
}
