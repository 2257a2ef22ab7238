package query

import (
	"github.com/evolvix-software/course-economics/internal/domain/course"
)

// ValidateCourseDTO is the outcome of a dry-run validation.
type ValidateCourseDTO struct {
	course.ValidationResult
	Tier string `json:"tier"`
}

// ValidateCourse runs the validation gate without storing anything. A
// commission split that violates its invariant is returned as an error, not
// as a validation message.
func ValidateCourse(d course.Draft) (*ValidateCourseDTO, error) {
	if d.Commission != nil {
		if err := d.Commission.Validate(); err != nil {
			return nil, err
		}
	}
	return &ValidateCourseDTO{
		ValidationResult: course.Validate(d),
		Tier:             d.Tier().String(),
	}, nil
}
