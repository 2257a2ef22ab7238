package mentor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreReputation_Max(t *testing.T) {
	assert.Equal(t, MaxScore, ScoreReputation(5, 15, 100, 100))
}

func TestScoreReputation_Caps(t *testing.T) {
	// Beyond the caps nothing changes.
	assert.Equal(t, MaxScore, ScoreReputation(5, 40, 100, 5000))
}

func TestScoreReputation_Zero(t *testing.T) {
	assert.Equal(t, 0, ScoreReputation(0, 0, 0, 0))
}

func TestExplain(t *testing.T) {
	b := Explain(Metrics{AverageRating: 4.2, VerifiedCourses: 3, CompletionRate: 65, TotalStudents: 47})

	assert.InDelta(t, 40.0, b.Rating, 1e-9)
	assert.InDelta(t, 6.0, b.Verified, 1e-9)
	assert.InDelta(t, 13.0, b.Completion, 1e-9)
	assert.InDelta(t, 4.7, b.Students, 1e-9)
	assert.Equal(t, 64, b.Score)
}

func TestScore_Rounding(t *testing.T) {
	// 3.0*20 capped at 40, 1*2, 12.5*0.2=2.5, 0 students: 44.5 rounds up.
	assert.Equal(t, 45, ScoreReputation(3.0, 1, 12.5, 0))
}

func TestScore_MonotonicInEachInput(t *testing.T) {
	base := Metrics{AverageRating: 2.5, VerifiedCourses: 5, CompletionRate: 50, TotalStudents: 30}
	baseScore := Score(base)

	for i := 0; i <= 50; i++ {
		m := base
		m.AverageRating = float64(i) * 0.1
		next := m
		next.AverageRating += 0.1
		assert.LessOrEqual(t, Score(m), Score(next), "rating %v", m.AverageRating)
	}

	for i := 0; i <= 20; i++ {
		m := base
		m.VerifiedCourses = i
		next := m
		next.VerifiedCourses++
		assert.LessOrEqual(t, Score(m), Score(next), "verified %d", i)
	}

	for i := 0; i <= 100; i++ {
		m := base
		m.CompletionRate = float64(i)
		next := m
		next.CompletionRate++
		assert.LessOrEqual(t, Score(m), Score(next), "completion %d", i)
	}

	for i := 0; i <= 150; i += 5 {
		m := base
		m.TotalStudents = i
		next := m
		next.TotalStudents += 5
		assert.LessOrEqual(t, Score(m), Score(next), "students %d", i)
	}

	assert.GreaterOrEqual(t, baseScore, 0)
	assert.LessOrEqual(t, baseScore, MaxScore)
}
