package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := NewScheduler(SchedulerConfig{WorkerCount: 1, QueueSize: 4})
	s.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func TestScheduleRequiresStart(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	err := s.Schedule(Job{Name: "noop", Run: func(context.Context) error { return nil }})
	require.ErrorIs(t, err, ErrSchedulerNotStarted)
}

func TestScheduleRunsJobOnce(t *testing.T) {
	s := startScheduler(t)
	done := make(chan struct{})
	release := make(chan struct{})

	require.NoError(t, s.Schedule(Job{Name: "gauges", Run: func(context.Context) error {
		<-release
		close(done)
		return nil
	}}))

	err := s.Schedule(Job{Name: "gauges", Run: func(context.Context) error { return nil }})
	require.ErrorIs(t, err, ErrJobAlreadyScheduled)

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
	assert.Eventually(t, func() bool { return s.ActiveJobCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestFailedJobIsRetried(t *testing.T) {
	s := startScheduler(t)
	var attempts atomic.Int32

	require.NoError(t, s.Schedule(Job{
		Name:        "flaky",
		RetryPolicy: RetryPolicy{MaxRetries: 2},
		Run: func(context.Context) error {
			if attempts.Add(1) < 3 {
				return errors.New("database unavailable")
			}
			return nil
		},
	}))

	assert.Eventually(t, func() bool { return attempts.Load() == 3 && s.ActiveJobCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPanickingJobDoesNotKillWorker(t *testing.T) {
	s := startScheduler(t)
	require.NoError(t, s.Schedule(Job{Name: "boom", Run: func(context.Context) error { panic("boom") }}))

	ran := make(chan struct{})
	assert.Eventually(t, func() bool {
		return s.Schedule(Job{Name: "after", Run: func(context.Context) error { close(ran); return nil }}) == nil
	}, time.Second, 5*time.Millisecond)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("worker stopped after a panic")
	}
}

func TestEveryRepeatsUntilShutdown(t *testing.T) {
	s := NewScheduler(SchedulerConfig{WorkerCount: 1})
	s.Start(context.Background())
	var runs atomic.Int32

	require.NoError(t, s.Every(10*time.Millisecond, Job{Name: "tick", Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())

	require.Error(t, s.Every(0, Job{Name: "bad", Run: func(context.Context) error { return nil }}))
}
