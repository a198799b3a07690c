package watch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs watch cycles on a fixed interval.
type Scheduler struct {
	cron    *cron.Cron
	watcher *Watcher
	log     *slog.Logger
}

// NewScheduler creates a Scheduler that runs w every interval. A cycle
// that is still running when the next one is due causes that run to be
// skipped.
func NewScheduler(w *Watcher, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("watch interval must be positive")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	s := &Scheduler{
		cron:    c,
		watcher: w,
		log:     log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.runWatch); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled cycles.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop stops the scheduler. The returned context is done once a running
// cycle finishes.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns when the next cycle is due, or the zero time if the
// scheduler is not running.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runWatch() {
	ctx := context.Background()
	s.log.Info("scheduled watch cycle starting")
	if _, err := s.watcher.RunOnce(ctx); err != nil {
		s.log.Error("scheduled watch cycle failed", "error", err)
	}
}
