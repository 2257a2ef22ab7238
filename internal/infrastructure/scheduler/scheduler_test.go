package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counts runs" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &countingJob{name: "count"}

	require.NoError(t, s.Register(job, "*/5 * * * *"))
	assert.ErrorIs(t, s.Register(job, "@hourly"), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(&countingJob{name: "bad"}, "not a spec"), ErrInvalidSchedule)
	assert.ErrorIs(t, s.Register(nil, "@hourly"), ErrNilJob)

	infos := s.ListJobs()
	require.Len(t, infos, 1)
	assert.Equal(t, "count", infos[0].Name)
	assert.Equal(t, "*/5 * * * *", infos[0].Schedule)

	require.NoError(t, s.Unregister("count"))
	assert.ErrorIs(t, s.Unregister("count"), ErrJobNotFound)
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	require.NoError(t, s.Register(ok, "@daily"))
	require.NoError(t, s.Register(failing, "@daily"))

	result, err := s.RunNow(context.Background(), "ok")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Manual)

	result, err = s.RunNow(context.Background(), "failing")
	assert.Error(t, err)
	assert.False(t, result.Success)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	snap := s.GetMetrics().Snapshot()
	assert.EqualValues(t, 2, snap.TotalExecutions)
	assert.EqualValues(t, 1, snap.TotalFailures)
	assert.InDelta(t, 0.5, snap.SuccessRate, 1e-9)

	history := s.GetHistory(1)
	require.Len(t, history, 1)
	assert.Equal(t, "failing", history[0].JobName)

	infos := s.ListJobs()
	assert.Equal(t, "failing", infos[0].Name)
	assert.EqualValues(t, 1, infos[0].FailCount)
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	job := &countingJob{name: "tick"}
	require.NoError(t, s.Register(job, "@every 1s"))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(), ErrSchedulerAlreadyRunning)

	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(ctx), ErrSchedulerNotRunning)
}
