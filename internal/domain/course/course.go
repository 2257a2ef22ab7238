package course

import (
	"strings"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/shared"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CommissionSplit divides a payment between the platform and the mentor, in
// percent. A course either specifies one or leaves it to the platform default;
// Course.Commission is nil in the second case.
type CommissionSplit struct {
	Platform decimal.Decimal `json:"platform"`
	Mentor   decimal.Decimal `json:"mentor"`
}

// DefaultCommissionSplit is applied when a course does not specify one.
func DefaultCommissionSplit() CommissionSplit {
	return CommissionSplit{
		Platform: decimal.NewFromInt(30),
		Mentor:   decimal.NewFromInt(70),
	}
}

// NewCommissionSplit builds a split and checks its invariant.
func NewCommissionSplit(platform, mentor decimal.Decimal) (CommissionSplit, error) {
	s := CommissionSplit{Platform: platform, Mentor: mentor}
	if err := s.Validate(); err != nil {
		return CommissionSplit{}, err
	}
	return s, nil
}

// Validate checks both shares are non-negative and add up to exactly 100.
func (s CommissionSplit) Validate() error {
	if s.Platform.IsNegative() || s.Mentor.IsNegative() {
		return shared.InvalidConfiguration("course", "CommissionSplit",
			"commission shares must be non-negative (platform=%s, mentor=%s)", s.Platform, s.Mentor)
	}
	if !s.Platform.Add(s.Mentor).Equal(hundred) {
		return shared.InvalidConfiguration("course", "CommissionSplit",
			"commission shares must sum to 100 (platform=%s, mentor=%s)", s.Platform, s.Mentor)
	}
	return nil
}

// Course is an accepted learning offering.
type Course struct {
	ID           string          `json:"id"`
	MentorID     string          `json:"mentor_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DurationText string          `json:"duration_text"`

	// Category is derived from DurationText by Classify and attached on save.
	Category Tier `json:"course_category"`

	// Commission is nil when the course relies on the default split.
	Commission *CommissionSplit `json:"commission_split,omitempty"`

	// VacancyID is only meaningful for tiers that require a vacancy.
	VacancyID string `json:"vacancy_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tier re-derives the tier from the duration text.
func (c *Course) Tier() Tier {
	return Classify(c.DurationText)
}

// EffectiveCommission returns the course split or the platform default.
func (c *Course) EffectiveCommission() CommissionSplit {
	return ResolveCommission(c.Commission)
}

// ResolveCommission makes the "split unspecified" case explicit.
func ResolveCommission(split *CommissionSplit) CommissionSplit {
	if split == nil {
		return DefaultCommissionSplit()
	}
	return *split
}

// Draft is a candidate course record as submitted by a mentor or provider.
// Every field is optional until the Validation Gate has accepted it.
type Draft struct {
	ID           string
	MentorID     string
	Title        string
	Description  string
	Price        *decimal.Decimal
	DurationText string
	Commission   *CommissionSplit
	VacancyID    string
}

// Tier classifies the draft by its duration text.
func (d Draft) Tier() Tier {
	return Classify(d.DurationText)
}

// ToCourse turns an accepted draft into a Course with derived fields attached.
// Callers must run Validate first.
func (d Draft) ToCourse(id string, now time.Time) *Course {
	c := &Course{
		ID:           id,
		MentorID:     d.MentorID,
		Title:        strings.TrimSpace(d.Title),
		Description:  strings.TrimSpace(d.Description),
		DurationText: strings.TrimSpace(d.DurationText),
		Commission:   d.Commission,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if d.Price != nil {
		c.Price = *d.Price
	}
	c.Category = Classify(c.DurationText)
	if c.Category.RequiresVacancy() {
		c.VacancyID = strings.TrimSpace(d.VacancyID)
	}
	return c
}

// DraftFromCourse rebuilds a draft from a stored course, for re-validation on update.
func DraftFromCourse(c *Course) Draft {
	price := c.Price
	return Draft{
		ID:           c.ID,
		MentorID:     c.MentorID,
		Title:        c.Title,
		Description:  c.Description,
		Price:        &price,
		DurationText: c.DurationText,
		Commission:   c.Commission,
		VacancyID:    c.VacancyID,
	}
}
