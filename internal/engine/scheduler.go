package engine

import (
	"context"
	"sync"
	"time"
)

// BatchRunner runs a batch for every pool with pending orders. It is
// implemented by the service layer so the engine does not depend on it.
type BatchRunner interface {
	RunAll(ctx context.Context)
}

// Scheduler periodically triggers batch runs, playing the role of the
// off-chain batcher bot.
type Scheduler struct {
	interval time.Duration
	runner   BatchRunner
	wg       sync.WaitGroup
}

// NewScheduler creates a Scheduler. An interval of zero or less disables it.
func NewScheduler(interval time.Duration, runner BatchRunner) *Scheduler {
	return &Scheduler{
		interval: interval,
		runner:   runner,
	}
}

// Enabled reports whether Start will launch a ticker.
func (s *Scheduler) Enabled() bool {
	return s.interval > 0 && s.runner != nil
}

// Start launches a background goroutine that ticks at the configured
// interval and runs pending batches. It stops when ctx is cancelled; use
// Wait to join it.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runner.RunAll(ctx)
			}
		}
	}()
}

// Wait blocks until the goroutine launched by Start has returned, including
// any RunAll call still in progress. It returns at once if Start never ran.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
