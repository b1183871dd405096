package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ReturnRanker/internal/calculator"
)

// Scheduler repeats evaluation runs on a cron schedule, ending each run at the current date.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *Runner
	TradesID string
	Ctx      context.Context

	// OnResult, when set, receives every successful run.
	OnResult func(*RunResult)

	mu sync.Mutex // one run at a time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *Runner, tradesID string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		TradesID: tradesID,
		Ctx:      ctx,
	}
}

// Register adds the evaluation job for spec, a six-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register evaluation task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Runner.Logger.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running evaluation to finish, including
// one started with RunNow outside the cron.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Runner.Logger.Info().Msg("scheduler stopped")
}

// RunNow executes one evaluation ending today. Errors are logged, not returned.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Ctx.Err() != nil {
		return
	}
	res, err := s.Runner.RunOnce(s.Ctx, s.TradesID, calculator.Day(time.Now()))
	if err != nil {
		s.Runner.Logger.Error().Err(err).Msg("scheduled evaluation failed")
		return
	}
	if s.OnResult != nil {
		s.OnResult(res)
	}
}
