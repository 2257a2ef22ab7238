// Package mentor scores mentor reputation from their teaching record.
package mentor

import "math"

// Sub-score weights and caps. The caps add up to MaxScore.
const (
	RatingWeight     = 20.0
	RatingCap        = 40.0
	VerifiedWeight   = 2.0
	VerifiedCap      = 30.0
	CompletionWeight = 0.2
	StudentsDivisor  = 10.0
	StudentsCap      = 10.0

	MaxScore = 100
)

// Metrics is the teaching record a reputation score is computed from.
type Metrics struct {
	// AverageRating is on a 0-5 scale.
	AverageRating float64 `json:"average_rating"`

	// VerifiedCourses counts courses that passed platform verification.
	VerifiedCourses int `json:"verified_courses"`

	// CompletionRate is already a 0-100 percentage.
	CompletionRate float64 `json:"completion_rate"`

	TotalStudents int `json:"total_students"`
}

// Breakdown exposes the four sub-scores behind a reputation score.
type Breakdown struct {
	Rating     float64 `json:"rating"`
	Verified   float64 `json:"verified"`
	Completion float64 `json:"completion"`
	Students   float64 `json:"students"`
	Score      int     `json:"score"`
}

// Explain computes each weighted sub-score and the rounded total.
func Explain(m Metrics) Breakdown {
	b := Breakdown{
		Rating:     math.Min(m.AverageRating*RatingWeight, RatingCap),
		Verified:   math.Min(float64(m.VerifiedCourses)*VerifiedWeight, VerifiedCap),
		Completion: m.CompletionRate * CompletionWeight,
		Students:   math.Min(float64(m.TotalStudents)/StudentsDivisor, StudentsCap),
	}
	b.Score = int(math.Round(b.Rating + b.Verified + b.Completion + b.Students))
	return b
}

// Score returns the reputation score for a mentor. It is non-decreasing in
// every input and reaches MaxScore when all four caps are hit.
func Score(m Metrics) int {
	return Explain(m).Score
}

// ScoreReputation is Score with positional arguments.
func ScoreReputation(averageRating float64, verifiedCourses int, completionRate float64, totalStudents int) int {
	return Score(Metrics{
		AverageRating:   averageRating,
		VerifiedCourses: verifiedCourses,
		CompletionRate:  completionRate,
		TotalStudents:   totalStudents,
	})
}
