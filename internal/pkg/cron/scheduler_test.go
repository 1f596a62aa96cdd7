package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ensurerFunc func(ctx context.Context, now time.Time) (int, error)

func (f ensurerFunc) EnsureMonthlyRuns(ctx context.Context, now time.Time) (int, error) {
	return f(ctx, now)
}

func TestPayrollJobs_EnsureMonthlyRuns(t *testing.T) {
	var got time.Time
	jobs := NewPayrollJobs(ensurerFunc(func(ctx context.Context, now time.Time) (int, error) {
		got = now
		return 2, nil
	}))
	jobs.now = func() time.Time { return time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC) }

	require.NoError(t, jobs.EnsureMonthlyRuns(context.Background()))
	assert.Equal(t, "2024-02", got.Format("2006-01"))
}

func TestPayrollJobs_WrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	jobs := NewPayrollJobs(ensurerFunc(func(context.Context, time.Time) (int, error) { return 0, boom }))

	assert.ErrorIs(t, jobs.EnsureMonthlyRuns(context.Background()), boom)
}

func TestScheduler_RunsJobImmediatelyAndStops(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler()
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_RunOnce(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler()
	jobs := NewPayrollJobs(ensurerFunc(func(context.Context, time.Time) (int, error) {
		calls.Add(1)
		return 1, nil
	}))
	jobs.RegisterJobs(s, time.Hour)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, int32(1), calls.Load())

	boom := errors.New("boom")
	s.AddJob("failing", time.Hour, func(context.Context) error { return boom })
	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

func TestScheduler_RecoversFromPanics(t *testing.T) {
	s := NewScheduler()
	s.AddJob("panicky", time.Hour, func(context.Context) error { panic("bad month") })

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad month")
}

func TestScheduler_ExecutionsHaveDeadline(t *testing.T) {
	s := NewScheduler()
	var hasDeadline bool
	s.AddJob("deadline", time.Minute, func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	require.NoError(t, s.RunOnce(context.Background()))
	assert.True(t, hasDeadline)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := NewScheduler()
	assert.NotPanics(t, s.Stop)
}
