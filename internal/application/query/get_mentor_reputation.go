package query

import (
	"github.com/evolvix-software/course-economics/internal/domain/mentor"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

// GetMentorReputationQuery carries the mentor's aggregate metrics.
type GetMentorReputationQuery struct {
	MentorID        string
	AverageRating   float64
	VerifiedCourses int
	CompletionRate  float64
	TotalStudents   int
}

// Validate rejects metrics outside their domains.
func (q GetMentorReputationQuery) Validate() error {
	switch {
	case q.AverageRating < 0 || q.AverageRating > 5:
		return shared.NewDomainError("mentor", "Reputation", shared.ErrValueOutOfRange, "average_rating must be between 0 and 5")
	case q.CompletionRate < 0 || q.CompletionRate > 100:
		return shared.NewDomainError("mentor", "Reputation", shared.ErrValueOutOfRange, "completion_rate must be between 0 and 100")
	case q.VerifiedCourses < 0 || q.TotalStudents < 0:
		return shared.NewDomainError("mentor", "Reputation", shared.ErrNegativeValue, "counts cannot be negative")
	}
	return nil
}

// ReputationDTO is a scored mentor.
type ReputationDTO struct {
	MentorID  string           `json:"mentor_id,omitempty"`
	Score     int              `json:"score"`
	Breakdown mentor.Breakdown `json:"breakdown"`
}

// GetMentorReputation scores a mentor.
func GetMentorReputation(q GetMentorReputationQuery) (*ReputationDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	b := mentor.Explain(mentor.Metrics{
		AverageRating:   q.AverageRating,
		VerifiedCourses: q.VerifiedCourses,
		CompletionRate:  q.CompletionRate,
		TotalStudents:   q.TotalStudents,
	})
	return &ReputationDTO{MentorID: q.MentorID, Score: b.Score, Breakdown: b}, nil
}
