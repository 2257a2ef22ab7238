package query

import (
	"context"

	"github.com/evolvix-software/course-economics/internal/domain/certificate"
	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/payment"
)

// CourseDTO is a stored course with its tier capabilities.
type CourseDTO struct {
	Course           *course.Course         `json:"course"`
	Tier             TierDTO                `json:"tier"`
	EffectiveSplit   course.CommissionSplit `json:"effective_split"`
	UsesDefaultSplit bool                   `json:"uses_default_split"`
}

// Lookups serves simple reads by identifier.
type Lookups struct {
	courses      course.Repository
	progress     certificate.Repository
	installments payment.InstallmentRepository
	distributor  *payment.Distributor
}

// NewLookups creates a new Lookups.
func NewLookups(
	courses course.Repository,
	progress certificate.Repository,
	installments payment.InstallmentRepository,
	distributor *payment.Distributor,
) *Lookups {
	return &Lookups{
		courses:      courses,
		progress:     progress,
		installments: installments,
		distributor:  distributor,
	}
}

// GetCourse returns a course by ID.
func (l *Lookups) GetCourse(ctx context.Context, id string) (*CourseDTO, error) {
	c, err := l.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CourseDTO{
		Course:           c,
		Tier:             describeTier(c.Tier()),
		EffectiveSplit:   l.distributor.ResolveSplit(c),
		UsesDefaultSplit: c.Commission == nil,
	}, nil
}

// ListMentorCourses returns a mentor's courses.
func (l *Lookups) ListMentorCourses(ctx context.Context, mentorID string) ([]*course.Course, error) {
	return l.courses.ListByMentor(ctx, mentorID)
}

// GetProgress returns a progress record.
func (l *Lookups) GetProgress(ctx context.Context, courseID, studentID string) (*certificate.Progress, error) {
	return l.progress.Get(ctx, courseID, studentID)
}

// GetInstallments returns an enrollment's schedule.
func (l *Lookups) GetInstallments(ctx context.Context, courseID, studentID string) ([]*payment.Installment, error) {
	return l.installments.ListByEnrollment(ctx, courseID, studentID)
}
