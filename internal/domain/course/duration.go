package course

import (
	"regexp"
	"strconv"
	"strings"
)

// Conversion table shared with every client that stores duration text.
const (
	HoursPerDay   = 8.0
	HoursPerWeek  = 40.0
	HoursPerMonth = 160.0

	MonthsPerWeek = 0.25
	MonthsPerDay  = 1.0 / 30.0
	MonthsPerHour = 1.0 / HoursPerMonth
)

// durationRegex captures the first number and the word directly after it.
var durationRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)[\s-]*([a-z]*)`)

// Duration is the normalized magnitude of a free-form duration string.
type Duration struct {
	Hours  float64 `json:"hours"`
	Months float64 `json:"months"`
}

// IsZero reports whether nothing could be parsed.
func (d Duration) IsZero() bool {
	return d.Hours == 0 && d.Months == 0
}

type durationUnit int

const (
	unitUnknown durationUnit = iota
	unitHour
	unitDay
	unitWeek
	unitMonth
)

// unitOf maps the word that follows the number onto a unit. Anything else
// in the text is ignored, so "10 hours over 2 weeks" is read as hours.
func unitOf(word string) durationUnit {
	switch word {
	case "month", "months":
		return unitMonth
	case "week", "weeks":
		return unitWeek
	case "day", "days":
		return unitDay
	case "hour", "hours", "hr", "hrs":
		return unitHour
	default:
		return unitUnknown
	}
}

// ParseDuration converts text such as "2 weeks" or "10.5 hours" into hour and
// month equivalents. Only the first number and the unit written right after
// it are used. Empty input, a missing number or an unknown unit yield the
// zero Duration; it never fails.
func ParseDuration(text string) Duration {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Duration{}
	}

	m := durationRegex.FindStringSubmatch(lower)
	if m == nil {
		return Duration{}
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil || n <= 0 {
		return Duration{}
	}

	switch unitOf(m[2]) {
	case unitMonth:
		return Duration{Hours: n * HoursPerMonth, Months: n}
	case unitWeek:
		return Duration{Hours: n * HoursPerWeek, Months: n * MonthsPerWeek}
	case unitDay:
		return Duration{Hours: n * HoursPerDay, Months: n * MonthsPerDay}
	case unitHour:
		return Duration{Hours: n, Months: n * MonthsPerHour}
	default:
		return Duration{}
	}
}
