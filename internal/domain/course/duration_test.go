package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		hours  float64
		months float64
	}{
		{"empty", "", 0, 0},
		{"blank", "   ", 0, 0},
		{"no number", "a few weeks", 0, 0},
		{"no unit", "12", 0, 0},
		{"hours", "10 hours", 10, 10.0 / 160},
		{"hr abbreviation", "3 hrs", 3, 3.0 / 160},
		{"single day", "1 day", 8, 1.0 / 30},
		{"weeks", "2 weeks", 80, 0.5},
		{"months", "4 months", 640, 4},
		{"uppercase", "3 MONTHS", 480, 3},
		{"decimal", "1.5 weeks", 60, 0.375},
		{"first number wins", "2 weeks and 3 days", 80, 0.5},
		{"trailing text", "6 hours of video content", 6, 6.0 / 160},
		{"later unit ignored", "10 hours over 2 weeks", 10, 10.0 / 160},
		{"shorter unit first", "3 days and 2 weeks", 24, 3.0 / 30},
		{"parenthetical", "3 weeks (about 1 month)", 120, 0.75},
		{"no space", "12hrs", 12, 12.0 / 160},
		{"hyphenated", "5-day intensive", 40, 5.0 / 30},
		{"leading text", "about 2 months", 320, 2},
		{"unit not after number", "weeks: 4", 0, 0},
		{"unknown unit", "3 semesters", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDuration(tt.input)
			assert.InDelta(t, tt.hours, d.Hours, 1e-9)
			assert.InDelta(t, tt.months, d.Months, 1e-9)
		})
	}
}

func TestParseDuration_NeverNegative(t *testing.T) {
	inputs := []string{"-5 hours", "minus 3 weeks", "0 months", "??", "weeks 4", "1e9 hours"}
	for _, in := range inputs {
		d := ParseDuration(in)
		assert.GreaterOrEqual(t, d.Hours, 0.0, in)
		assert.GreaterOrEqual(t, d.Months, 0.0, in)
	}
}

func TestParseDuration_EmptyIsZero(t *testing.T) {
	assert.True(t, ParseDuration("").IsZero())
	assert.False(t, ParseDuration("1 hour").IsZero())
}
