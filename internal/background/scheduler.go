// Package background runs maintenance jobs on a small worker pool.
package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"blogmodapk-backend/internal/metrics"
	"blogmodapk-backend/pkg/logger"
)

type SchedulerConfig struct {
	WorkerCount int
	QueueSize   int
}

type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

type Job struct {
	Name        string
	Run         func(ctx context.Context) error
	Timeout     time.Duration
	RetryPolicy RetryPolicy
}

var (
	ErrSchedulerNotStarted = errors.New("scheduler not started")
	ErrJobAlreadyScheduled = errors.New("job already scheduled")
	ErrSchedulerStopped    = errors.New("scheduler is shutting down")
)

// Scheduler executes queued jobs. A job name is queued at most once at a
// time, so a slow run is never stacked behind copies of itself.
type Scheduler struct {
	config SchedulerConfig

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	active  map[string]struct{}

	queue chan queuedJob
	wg    sync.WaitGroup
}

type queuedJob struct {
	job     Job
	attempt int
	delay   time.Duration
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 32
	}

	return &Scheduler{
		config: cfg,
		queue:  make(chan queuedJob, cfg.QueueSize),
		active: make(map[string]struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true

	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Schedule queues one run of job.
func (s *Scheduler) Schedule(job Job) error {
	if job.Name == "" {
		return errors.New("job name is required")
	}
	if job.Run == nil {
		return errors.New("job runner is required")
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrSchedulerNotStarted
	}
	if _, exists := s.active[job.Name]; exists {
		s.mu.Unlock()
		return ErrJobAlreadyScheduled
	}
	s.active[job.Name] = struct{}{}
	ctx := s.ctx
	s.mu.Unlock()

	if !s.enqueue(ctx, queuedJob{job: job, attempt: 1}) {
		s.release(job.Name)
		return ErrSchedulerStopped
	}
	return nil
}

// Every queues job immediately and then once per interval until the
// scheduler shuts down. Ticks that find the previous run still queued are skipped.
func (s *Scheduler) Every(interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s for job %s", interval, job.Name)
	}
	if err := s.Schedule(job); err != nil {
		return err
	}

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Schedule(job); err != nil && !errors.Is(err, ErrJobAlreadyScheduled) {
					return
				}
			}
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) ActiveJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case queued := <-s.queue:
			s.execute(queued)
		}
	}
}

func (s *Scheduler) execute(queued queuedJob) {
	fields := map[string]interface{}{"job": queued.job.Name, "attempt": queued.attempt}

	if queued.delay > 0 {
		timer := time.NewTimer(queued.delay)
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			timer.Stop()
			s.release(queued.job.Name)
			return
		}
	}

	err := s.run(queued)
	if err == nil {
		s.release(queued.job.Name)
		logger.Debug("Background job completed", fields)
		return
	}

	policy := queued.job.RetryPolicy
	if !errors.Is(err, context.Canceled) && queued.attempt <= policy.MaxRetries {
		retry := queued
		retry.attempt++
		retry.delay = policy.Backoff
		if s.enqueue(s.ctx, retry) {
			return
		}
	}

	s.release(queued.job.Name)
	if errors.Is(err, context.Canceled) {
		logger.Warn("Background job canceled", fields)
		return
	}
	logger.Error(err, "Background job failed", fields)
}

func (s *Scheduler) run(queued queuedJob) (runErr error) {
	start := time.Now()
	status := "success"

	ctx := s.ctx
	if queued.job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, queued.job.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("panic: %v", r)
		}
		switch {
		case runErr == nil:
		case errors.Is(runErr, context.Canceled):
			status = "canceled"
		default:
			status = "failure"
		}
		metrics.ObserveJob(queued.job.Name, status, time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return queued.job.Run(ctx)
}

func (s *Scheduler) enqueue(ctx context.Context, queued queuedJob) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case s.queue <- queued:
		return true
	}
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	delete(s.active, name)
	s.mu.Unlock()
}
