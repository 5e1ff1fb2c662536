package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a standard cron schedule. A run that is still
// going when the next one is due makes the next one skip.
type Scheduler struct {
	spec    string
	job     func(ctx context.Context)
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
	entry   cron.EntryID
	stop    chan struct{}
}

// NewScheduler validates spec and creates a scheduler for job
func NewScheduler(spec string, job func(ctx context.Context), logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(slog.String("component", "scheduler"))

	cl := cronLogger{logger: logger}
	return &Scheduler{
		spec:   spec,
		job:    job,
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
	}, nil
}

// Start schedules the job and returns. The scheduler stops when ctx is done.
// A stopped scheduler can be started again.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	entry, err := s.cron.AddFunc(s.spec, func() { s.job(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule run: %w", err)
	}
	s.entry = entry
	s.stop = make(chan struct{})
	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started", slog.String("schedule", s.spec))

	go func(stop <-chan struct{}) {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stop:
		}
	}(s.stop)
	return nil
}

// Stop stops scheduling, waits for a running job to finish and drops the
// scheduled entry
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stop)
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entry)
	s.running = false
	s.logger.Info("scheduler stopped")
}

// NextRun returns when the job runs next, or nil when nothing is scheduled
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
