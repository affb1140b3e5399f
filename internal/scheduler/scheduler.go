package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Job is a periodic task. Run must honour ctx cancellation.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs every job once at start and then on its interval. Each job
// has its own goroutine, so a slow run delays only its own next tick and two
// runs of the same job never overlap.
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
	stopOnce sync.Once
}

func New(logger *slog.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{
		jobs:   jobs,
		logger: logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("scheduler already started")
	}
	for _, job := range s.jobs {
		if job.Interval <= 0 || job.Run == nil {
			return errors.New("scheduler: job " + job.Name + " needs a positive interval and a run func")
		}
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}

	s.logger.Info("scheduler started", "jobs", len(s.jobs))
	return nil
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	s.runOnce(job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug("scheduler job stopped", "job", job.Name)
			return
		case <-ticker.C:
			s.runOnce(job)
		}
	}
}

func (s *Scheduler) runOnce(job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("scheduler job panicked", "job", job.Name, "panic", rec)
		}
	}()

	started := time.Now()
	if err := job.Run(s.ctx); err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.logger.Error("scheduler job failed", "job", job.Name, "error", err, "duration", time.Since(started))
		return
	}
	s.logger.Debug("scheduler job finished", "job", job.Name, "duration", time.Since(started))
}

// Stop cancels pending runs and waits for in-flight ones to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if !started {
			return
		}

		s.cancel()
		s.wg.Wait()
		s.logger.Info("scheduler stopped")
	})
}
