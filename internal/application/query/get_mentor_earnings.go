package query

import (
	"context"
	"errors"
	"strings"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MENTOR EARNINGS QUERY
// Aggregates a mentor's distributions into total, pending and completed
// earnings. Results are cached; writes to distributions invalidate the entry.
// ══════════════════════════════════════════════════════════════════════════════

// GetMentorEarningsQuery identifies the mentor.
type GetMentorEarningsQuery struct {
	MentorID string

	// SkipCache forces a recomputation.
	SkipCache bool
}

// Validate validates the query.
func (q GetMentorEarningsQuery) Validate() error {
	if strings.TrimSpace(q.MentorID) == "" {
		return errors.New("mentor_id is required")
	}
	return nil
}

// EarningsDTO is a mentor's earnings summary.
type EarningsDTO struct {
	payment.Earnings
	FromCache bool `json:"from_cache"`
}

// GetMentorEarningsHandler handles GetMentorEarningsQuery.
type GetMentorEarningsHandler struct {
	distributions payment.DistributionRepository
	cache         payment.EarningsCache
	log           *logger.Logger
}

// NewGetMentorEarningsHandler creates a new GetMentorEarningsHandler.
// cache may be nil.
func NewGetMentorEarningsHandler(
	distributions payment.DistributionRepository,
	cache payment.EarningsCache,
	log *logger.Logger,
) *GetMentorEarningsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GetMentorEarningsHandler{
		distributions: distributions,
		cache:         cache,
		log:           log.With(logger.Component("get_mentor_earnings")),
	}
}

// Handle executes the query.
func (h *GetMentorEarningsHandler) Handle(ctx context.Context, q GetMentorEarningsQuery) (*EarningsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("payment", "Earnings", shared.ErrInvalidInput, "invalid query", err)
	}

	if h.cache != nil && !q.SkipCache {
		cached, ok, err := h.cache.Get(ctx, q.MentorID)
		if err != nil {
			h.log.Warn("earnings cache read failed", logger.MentorID(q.MentorID), logger.Err(err))
		} else if ok {
			return &EarningsDTO{Earnings: *cached, FromCache: true}, nil
		}
	}

	ds, err := h.distributions.ListByMentor(ctx, q.MentorID)
	if err != nil {
		return nil, err
	}
	e := payment.SummarizeMentorEarnings(ds, q.MentorID)

	if h.cache != nil {
		if err := h.cache.Set(ctx, &e); err != nil {
			h.log.Warn("earnings cache write failed", logger.MentorID(q.MentorID), logger.Err(err))
		}
	}

	return &EarningsDTO{Earnings: e}, nil
}
