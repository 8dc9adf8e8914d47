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

type fakeCloser struct {
	calls  atomic.Int32
	closed int
	err    error
	lastAt time.Time
}

func (f *fakeCloser) CloseStalePunches(ctx context.Context, now time.Time) (int, error) {
	f.calls.Add(1)
	f.lastAt = now
	return f.closed, f.err
}

func TestAttendanceJobs_AutoCloseStalePunches(t *testing.T) {
	closer := &fakeCloser{closed: 3}
	jobs := NewAttendanceJobs(closer, 0)
	fixed := time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return fixed }

	require.NoError(t, jobs.AutoCloseStalePunches(context.Background()))
	assert.Equal(t, int32(1), closer.calls.Load())
	assert.Equal(t, fixed, closer.lastAt)
	assert.Equal(t, time.Hour, jobs.interval)

	closer.err = errors.New("db down")
	assert.Error(t, jobs.AutoCloseStalePunches(context.Background()))
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(time.Second)
	closer := &fakeCloser{}
	NewAttendanceJobs(closer, time.Minute).RegisterJobs(s)
	s.AddJob("failing", time.Minute, func(ctx context.Context) error { return errors.New("boom") })
	s.AddJob("panicking", time.Minute, func(ctx context.Context) error { panic("oops") })

	failed := s.RunOnce(context.Background())
	assert.Equal(t, 2, failed)
	assert.Equal(t, int32(1), closer.calls.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(0)
	var runs atomic.Int32
	s.AddJob("tick", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())

	// registering after start is ignored
	s.AddJob("late", time.Millisecond, func(ctx context.Context) error { return nil })
	assert.Len(t, s.jobs, 1)
}
