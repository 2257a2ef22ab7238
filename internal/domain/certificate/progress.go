// Package certificate decides when a student's course progress earns a
// certificate and stamps the issuance metadata exactly once.
package certificate

import (
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

// DefaultThreshold is the progress percentage that makes a student eligible.
const DefaultThreshold = 80.0

// ErrAlreadyIssued is returned by repositories when a concurrent writer
// issued the certificate first.
var ErrAlreadyIssued = shared.NewDomainError("certificate", "MarkIssued", shared.ErrInvalidState, "certificate already issued")

// State is the issuance state of a progress record.
type State string

const (
	StateNotIssued State = "not-issued"
	StateIssued    State = "issued"
)

// Progress tracks one student's advancement through one course.
//
// Once CertificateIssued is true the record is terminal: the certificate
// fields and MentorSigned are never recomputed.
type Progress struct {
	StudentID           string     `json:"student_id"`
	CourseID            string     `json:"course_id"`
	ProgressPercentage  float64    `json:"progress_percentage"`
	CertificateIssued   bool       `json:"certificate_issued"`
	CertificateID       string     `json:"certificate_id,omitempty"`
	CertificateURL      string     `json:"certificate_url,omitempty"`
	CertificateIssuedAt *time.Time `json:"certificate_issued_at,omitempty"`
	MentorSigned        bool       `json:"mentor_signed"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// State reports the issuance state.
func (p Progress) State() State {
	if p.CertificateIssued {
		return StateIssued
	}
	return StateNotIssued
}

// NewProgress starts a record at the given percentage, clamped to 0..100.
func NewProgress(studentID, courseID string, percentage float64, now time.Time) Progress {
	return Progress{
		StudentID:          studentID,
		CourseID:           courseID,
		ProgressPercentage: clampPercentage(percentage),
		UpdatedAt:          now,
	}
}

// WithPercentage returns a copy at a new percentage. The issuance fields are
// left as they are, so lowering the percentage never revokes a certificate.
func (p Progress) WithPercentage(percentage float64, now time.Time) Progress {
	p.ProgressPercentage = clampPercentage(percentage)
	p.UpdatedAt = now
	return p
}

func clampPercentage(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
