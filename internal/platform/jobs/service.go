package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const JobAutoClockOut = "attendance_auto_clock_out"

// RunStore records job executions in job_runs.
type RunStore interface {
	StartRun(ctx context.Context, jobType string) (string, error)
	FinishRun(ctx context.Context, runID, status string, details []byte) error
}

// AutoCloser closes attendance records left open before the given day.
type AutoCloser interface {
	AutoCloseStale(ctx context.Context, now time.Time) (int64, error)
}

type Service struct {
	runs       RunStore
	closer     AutoCloser
	interval   time.Duration
	queue      chan job
	now        func() time.Time
	workerDone sync.WaitGroup
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(runs RunStore, closer AutoCloser, interval time.Duration) *Service {
	return &Service{
		runs:     runs,
		closer:   closer,
		interval: interval,
		queue:    make(chan job, 32),
		now:      time.Now,
	}
}

// Run starts the worker and scheduler and blocks until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.workerDone.Add(1)
	go func() {
		defer s.workerDone.Done()
		s.worker(ctx)
	}()
	if s.interval > 0 && s.closer != nil {
		s.workerDone.Add(1)
		go func() {
			defer s.workerDone.Done()
			s.scheduleAutoClockOut(ctx, s.interval)
		}()
	}
	<-ctx.Done()
	s.workerDone.Wait()
	return nil
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// AutoClockOut closes stale attendance records immediately.
func (s *Service) AutoClockOut(ctx context.Context) (any, error) {
	return s.RunNow(ctx, JobAutoClockOut, s.autoClockOut)
}

func (s *Service) autoClockOut(ctx context.Context) (any, error) {
	closed, err := s.closer.AutoCloseStale(ctx, s.now())
	return map[string]any{"closed": closed}, err
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.runs != nil {
		id, err := s.runs.StartRun(ctx, j.Type)
		if err != nil {
			slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.runs.FinishRun(ctx, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "jobType", j.Type, "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleAutoClockOut(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobAutoClockOut, s.autoClockOut)
		}
	}
}
