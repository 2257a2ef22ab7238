package payment

import (
	"strings"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places kept on every cut.
const CurrencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundingMode selects how the two cuts are rounded.
type RoundingMode string

const (
	// RoundingIndependent rounds each cut on its own. The cuts may then differ
	// from the amount by up to one cent.
	RoundingIndependent RoundingMode = "independent"

	// RoundingReconciled rounds the platform cut and gives the mentor the rest,
	// so the cuts always add up to the amount.
	RoundingReconciled RoundingMode = "reconciled"
)

// DefaultRoundingMode keeps existing records reproducible.
const DefaultRoundingMode = RoundingIndependent

// ParseRoundingMode accepts the mode names case-insensitively.
func ParseRoundingMode(s string) (RoundingMode, bool) {
	switch RoundingMode(strings.ToLower(strings.TrimSpace(s))) {
	case RoundingIndependent:
		return RoundingIndependent, true
	case RoundingReconciled:
		return RoundingReconciled, true
	default:
		return "", false
	}
}

// Round rounds a currency amount half away from zero to CurrencyPlaces.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// IsCurrencyAmount reports whether d carries no precision below a cent.
// Trailing zeros do not count, so 10.500 is a currency amount.
func IsCurrencyAmount(d decimal.Decimal) bool {
	return d.Equal(Round(d))
}

// Split is the result of dividing an amount.
type Split struct {
	Amount      decimal.Decimal        `json:"amount"`
	Commission  course.CommissionSplit `json:"commission"`
	PlatformCut decimal.Decimal        `json:"platform_cut"`
	MentorCut   decimal.Decimal        `json:"mentor_cut"`
}

// Discrepancy is PlatformCut + MentorCut - Amount.
func (s Split) Discrepancy() decimal.Decimal {
	return s.PlatformCut.Add(s.MentorCut).Sub(s.Amount)
}

// SplitAmount divides a non-negative amount of whole cents according to
// split. The split must satisfy CommissionSplit.Validate.
func SplitAmount(amount decimal.Decimal, split course.CommissionSplit, mode RoundingMode) (Split, error) {
	if amount.IsNegative() {
		return Split{}, shared.InvalidConfiguration("payment", "SplitAmount", "amount must not be negative (got %s)", amount)
	}
	if !IsCurrencyAmount(amount) {
		return Split{}, shared.InvalidConfiguration("payment", "SplitAmount", "amount must not have more than %d decimal places (got %s)", CurrencyPlaces, amount)
	}
	if err := split.Validate(); err != nil {
		return Split{}, err
	}

	platform := Round(amount.Mul(split.Platform).Div(hundred))

	var mentor decimal.Decimal
	switch mode {
	case RoundingReconciled:
		mentor = amount.Sub(platform)
	case RoundingIndependent, "":
		mentor = Round(amount.Mul(split.Mentor).Div(hundred))
	default:
		return Split{}, shared.InvalidConfiguration("payment", "SplitAmount", "unknown rounding mode %q", mode)
	}

	return Split{
		Amount:      amount,
		Commission:  split,
		PlatformCut: platform,
		MentorCut:   mentor,
	}, nil
}
