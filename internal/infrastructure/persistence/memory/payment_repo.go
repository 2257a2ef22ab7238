package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

// DistributionRepository implements payment.DistributionRepository.
type DistributionRepository struct {
	mu    sync.RWMutex
	items map[string]payment.Distribution
}

// NewDistributionRepository creates an empty repository.
func NewDistributionRepository() *DistributionRepository {
	return &DistributionRepository{items: make(map[string]payment.Distribution)}
}

// Create stores a new distribution.
func (r *DistributionRepository) Create(_ context.Context, d *payment.Distribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[d.ID]; ok {
		return shared.ErrDistributionExists
	}
	r.items[d.ID] = copyDistribution(*d)
	return nil
}

// GetByID returns a distribution.
func (r *DistributionRepository) GetByID(_ context.Context, id string) (*payment.Distribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[id]
	if !ok {
		return nil, shared.ErrDistributionNotFound
	}
	out := copyDistribution(d)
	return &out, nil
}

// UpdateStatus writes d only if the stored status equals expected.
func (r *DistributionRepository) UpdateStatus(_ context.Context, expected payment.Status, d *payment.Distribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[d.ID]
	if !ok {
		return shared.ErrDistributionNotFound
	}
	if stored.Status != expected {
		return shared.ErrDistributionConflict
	}
	stored.Status = d.Status
	stored.UpdatedAt = d.UpdatedAt
	stored.DistributedAt = d.DistributedAt
	r.items[d.ID] = copyDistribution(stored)
	return nil
}

// ListByMentor returns the mentor's distributions, newest first.
func (r *DistributionRepository) ListByMentor(_ context.Context, mentorID string) ([]*payment.Distribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*payment.Distribution, 0)
	for _, d := range r.items {
		if d.MentorID == mentorID {
			cp := copyDistribution(d)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func copyDistribution(d payment.Distribution) payment.Distribution {
	if d.DistributedAt != nil {
		at := *d.DistributedAt
		d.DistributedAt = &at
	}
	return d
}

// InstallmentRepository implements payment.InstallmentRepository.
type InstallmentRepository struct {
	mu    sync.RWMutex
	items map[string]payment.Installment
}

// NewInstallmentRepository creates an empty repository.
func NewInstallmentRepository() *InstallmentRepository {
	return &InstallmentRepository{items: make(map[string]payment.Installment)}
}

// SaveSchedule stores a whole schedule.
func (r *InstallmentRepository) SaveSchedule(_ context.Context, items []*payment.Installment) error {
	if len(items) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	first := items[0]
	for _, it := range r.items {
		if it.CourseID == first.CourseID && it.StudentID == first.StudentID {
			return payment.ErrScheduleExists
		}
	}
	for _, it := range items {
		r.items[it.ID] = copyInstallment(*it)
	}
	return nil
}

// ListByEnrollment returns a schedule ordered by number.
func (r *InstallmentRepository) ListByEnrollment(_ context.Context, courseID, studentID string) ([]*payment.Installment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*payment.Installment, 0)
	for _, it := range r.items {
		if it.CourseID == courseID && it.StudentID == studentID {
			cp := copyInstallment(it)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// ListNeedingReminder returns installments due by horizon, oldest first.
func (r *InstallmentRepository) ListNeedingReminder(_ context.Context, horizon time.Time, limit int) ([]*payment.Installment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*payment.Installment, 0)
	for _, it := range r.items {
		if it.NeedsReminder(horizon) {
			cp := copyInstallment(it)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkReminded stamps RemindedAt.
func (r *InstallmentRepository) MarkReminded(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return payment.ErrInstallmentNotFound
	}
	it.RemindedAt = &at
	r.items[id] = it
	return nil
}

// MarkPaid marks one installment of an enrollment paid.
func (r *InstallmentRepository) MarkPaid(_ context.Context, courseID, studentID string, number int, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, it := range r.items {
		if it.CourseID != courseID || it.StudentID != studentID || it.Number != number {
			continue
		}
		if it.Status == payment.InstallmentPaid {
			return false, nil
		}
		it.Status = payment.InstallmentPaid
		it.PaidAt = &at
		r.items[id] = it
		return true, nil
	}
	return false, payment.ErrInstallmentNotFound
}

func copyInstallment(it payment.Installment) payment.Installment {
	if it.RemindedAt != nil {
		at := *it.RemindedAt
		it.RemindedAt = &at
	}
	if it.PaidAt != nil {
		at := *it.PaidAt
		it.PaidAt = &at
	}
	return it
}
