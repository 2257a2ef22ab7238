// Package query contains read operations (CQRS - Queries).
package query

import (
	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFY COURSE QUERY
// Parses a duration and reports the tier with its capability predicates.
// These are the only place tier gating is decided.
// ══════════════════════════════════════════════════════════════════════════════

// DurationDTO is a parsed duration.
type DurationDTO struct {
	Hours  float64 `json:"hours"`
	Months float64 `json:"months"`
}

// TierDTO describes a tier and what it gates.
type TierDTO struct {
	Tier                    string `json:"tier"`
	RequiresVacancy         bool   `json:"requires_vacancy"`
	AllowsScholarship       bool   `json:"allows_scholarship"`
	RequiresMentorSignature bool   `json:"requires_mentor_signature"`
}

// ClassificationDTO is the result of classifying a duration text.
type ClassificationDTO struct {
	DurationText string      `json:"duration_text"`
	Duration     DurationDTO `json:"duration"`
	TierDTO
}

// ParseDuration parses free-form duration text. It never fails.
func ParseDuration(text string) DurationDTO {
	d := course.ParseDuration(text)
	return DurationDTO{Hours: d.Hours, Months: d.Months}
}

// ClassifyCourse classifies a duration text. It never fails; unreadable text
// lands in the default tier.
func ClassifyCourse(durationText string) ClassificationDTO {
	d := course.ParseDuration(durationText)
	return ClassificationDTO{
		DurationText: durationText,
		Duration:     DurationDTO{Hours: d.Hours, Months: d.Months},
		TierDTO:      describeTier(course.ClassifyDuration(d)),
	}
}

// DescribeTier reports the capabilities of a named tier.
func DescribeTier(name string) (TierDTO, error) {
	t, ok := course.ParseTier(name)
	if !ok {
		return TierDTO{}, shared.NewDomainError("course", "DescribeTier", shared.ErrNotFound, "unknown tier "+name)
	}
	return describeTier(t), nil
}

// ListTiers describes every tier in ascending order.
func ListTiers() []TierDTO {
	out := make([]TierDTO, 0, len(course.AllTiers))
	for _, t := range course.AllTiers {
		out = append(out, describeTier(t))
	}
	return out
}

func describeTier(t course.Tier) TierDTO {
	return TierDTO{
		Tier:                    t.String(),
		RequiresVacancy:         course.RequiresVacancy(t),
		AllowsScholarship:       course.AllowsScholarship(t),
		RequiresMentorSignature: t.RequiresMentorSignature(),
	}
}
