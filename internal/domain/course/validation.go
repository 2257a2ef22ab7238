package course

import "strings"

// Validation messages, in the order the checks run.
const (
	MsgTitleRequired       = "Title is required"
	MsgDescriptionRequired = "Description is required"
	MsgPriceInvalid        = "Price must be a non-negative number"
	MsgVacancyRequired     = "A vacancy must be linked for bootcamp and bundle courses"
)

// ValidationResult lists every violation found in a draft.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks a draft for completeness and tier consistency. It collects
// every violation instead of stopping at the first one, checking title,
// description, price and vacancy in that order.
//
// A malformed commission split is not a validation message: it is a
// configuration error reported by CommissionSplit.Validate.
func Validate(d Draft) ValidationResult {
	errs := make([]string, 0, 4)

	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, MsgTitleRequired)
	}
	if strings.TrimSpace(d.Description) == "" {
		errs = append(errs, MsgDescriptionRequired)
	}
	if d.Price == nil || d.Price.IsNegative() {
		errs = append(errs, MsgPriceInvalid)
	}
	if d.Tier().RequiresVacancy() && strings.TrimSpace(d.VacancyID) == "" {
		errs = append(errs, MsgVacancyRequired)
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}
