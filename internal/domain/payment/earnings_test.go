package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeMentorEarnings(t *testing.T) {
	ds := []*Distribution{
		{MentorID: "m1", MentorCut: dec("70.00"), Status: StatusPending},
		{MentorID: "m1", MentorCut: dec("35.50"), Status: StatusProcessing},
		{MentorID: "m1", MentorCut: dec("140.00"), Status: StatusCompleted},
		{MentorID: "m1", MentorCut: dec("999.00"), Status: StatusFailed},
		{MentorID: "m2", MentorCut: dec("500.00"), Status: StatusCompleted},
		nil,
	}

	e := SummarizeMentorEarnings(ds, "m1")

	assert.Equal(t, "m1", e.MentorID)
	assert.Equal(t, "105.50", e.Pending.StringFixed(2))
	assert.Equal(t, "140.00", e.Completed.StringFixed(2))
	assert.Equal(t, "245.50", e.Total.StringFixed(2))
	assert.Equal(t, 3, e.Distributions)
}

func TestSummarizeMentorEarnings_Empty(t *testing.T) {
	e := SummarizeMentorEarnings(nil, "m1")

	assert.True(t, e.Total.IsZero())
	assert.True(t, e.Pending.IsZero())
	assert.True(t, e.Completed.IsZero())
	assert.Zero(t, e.Distributions)
}
