package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/evolvix-software/course-economics/internal/domain/certificate"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

type progressKey struct {
	courseID  string
	studentID string
}

// ProgressRepository implements certificate.Repository.
type ProgressRepository struct {
	mu      sync.RWMutex
	records map[progressKey]certificate.Progress
}

// NewProgressRepository creates an empty repository.
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{records: make(map[progressKey]certificate.Progress)}
}

// Get returns the record for a pair.
func (r *ProgressRepository) Get(_ context.Context, courseID, studentID string) (*certificate.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.records[progressKey{courseID, studentID}]
	if !ok {
		return nil, shared.ErrProgressNotFound
	}
	out := copyProgress(p)
	return &out, nil
}

// SavePercentage creates the record or updates its percentage. Issuance
// fields of a stored record are left alone.
func (r *ProgressRepository) SavePercentage(_ context.Context, p *certificate.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := progressKey{p.CourseID, p.StudentID}
	stored, ok := r.records[key]
	if !ok {
		r.records[key] = copyProgress(*p)
		return nil
	}
	stored.ProgressPercentage = p.ProgressPercentage
	stored.UpdatedAt = p.UpdatedAt
	r.records[key] = stored
	return nil
}

// MarkIssued stores an issued record if the stored one is not issued yet.
func (r *ProgressRepository) MarkIssued(_ context.Context, p *certificate.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := progressKey{p.CourseID, p.StudentID}
	stored, ok := r.records[key]
	if !ok {
		return shared.ErrProgressNotFound
	}
	if stored.CertificateIssued {
		return certificate.ErrAlreadyIssued
	}
	r.records[key] = copyProgress(*p)
	return nil
}

// ListByStudent returns a student's records ordered by course.
func (r *ProgressRepository) ListByStudent(_ context.Context, studentID string) ([]*certificate.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*certificate.Progress, 0)
	for k, p := range r.records {
		if k.studentID == studentID {
			cp := copyProgress(p)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func copyProgress(p certificate.Progress) certificate.Progress {
	if p.CertificateIssuedAt != nil {
		at := *p.CertificateIssuedAt
		p.CertificateIssuedAt = &at
	}
	return p
}
