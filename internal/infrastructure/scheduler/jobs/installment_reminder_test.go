package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/internal/infrastructure/persistence/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	events []shared.Event
	err    error
}

func (p *recordingPublisher) Publish(e shared.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func seedSchedule(t *testing.T, repo *memory.InstallmentRepository, studentID string, start time.Time) {
	t.Helper()
	entries, err := payment.BuildInstallmentSchedule(decimal.NewFromInt(1000), 3, start)
	require.NoError(t, err)

	items := payment.NewInstallments(
		payment.Enrollment{CourseID: "course-1", StudentID: studentID, MentorID: "mentor-1"},
		entries, shared.IDGeneratorFunc(uuid.NewString), start)
	require.NoError(t, repo.SaveSchedule(context.Background(), items))
}

func TestInstallmentReminderJob_RemindsOnce(t *testing.T) {
	repo := memory.NewInstallmentRepository()
	seedSchedule(t, repo, "student-1", now.AddDate(0, 0, -1))
	seedSchedule(t, repo, "student-2", now.AddDate(0, 0, 2))
	seedSchedule(t, repo, "student-3", now.AddDate(0, 0, 10))

	pub := &recordingPublisher{}
	job := NewInstallmentReminderJob(repo, pub, shared.FixedClock(now), nil, InstallmentReminderConfig{})

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, pub.events, 2)

	first := pub.events[0].(shared.InstallmentEvent)
	assert.Equal(t, shared.EventInstallmentDue, first.EventType())
	assert.Equal(t, "student-1", first.StudentID)
	assert.Equal(t, 1, first.InstallmentNumber)
	assert.Equal(t, 3, first.TotalInstallments)
	assert.Equal(t, "333.33", first.Amount)

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.Found)
	assert.Equal(t, 2, stats.Reminded)
	assert.Equal(t, now.Add(72*time.Hour), stats.Horizon)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, pub.events, 2, "already reminded installments are skipped")

	items, err := repo.ListByEnrollment(context.Background(), "course-1", "student-1")
	require.NoError(t, err)
	require.NotNil(t, items[0].RemindedAt)
	assert.Nil(t, items[1].RemindedAt)
}

func TestInstallmentReminderJob_PublishFailureRetriesNextRun(t *testing.T) {
	repo := memory.NewInstallmentRepository()
	seedSchedule(t, repo, "student-1", now)

	pub := &recordingPublisher{err: errors.New("bus closed")}
	job := NewInstallmentReminderJob(repo, pub, shared.FixedClock(now), nil, InstallmentReminderConfig{LookAhead: time.Hour})

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, job.LastRunStats().Failed)

	pub.err = nil
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, pub.events, 1)
}

func TestInstallmentReminderJob_Metadata(t *testing.T) {
	job := NewInstallmentReminderJob(memory.NewInstallmentRepository(), nil, nil, nil, InstallmentReminderConfig{})
	assert.Equal(t, "installment_reminder", job.Name())
	assert.Contains(t, job.Description(), "72h0m0s")
	assert.Nil(t, job.LastRunStats())
}
