package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ptero-backup/src/config"
	"ptero-backup/src/jobs"
)

// InvalidScheduleError marks a server whose cron expression could not be
// parsed. The server is excluded from scheduling; others are unaffected.
type InvalidScheduleError struct {
	ServerID string
	Expr     string
	Err      error
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid schedule %q for server %s: %v", e.Expr, e.ServerID, e.Err)
}

func (e *InvalidScheduleError) Unwrap() error { return e.Err }

// Scheduler owns the process-wide cron timers, one per registered server,
// and dispatches backup jobs through a shared Runner. Entries fire in their
// own goroutines, so a slow backup for one server never delays another's
// trigger; overlapping triggers for the same server are skipped by the
// Runner's per-server lock.
type Scheduler struct {
	cron   *cron.Cron
	runner *jobs.Runner
	logger *zap.Logger
}

// New builds a scheduler evaluating cron expressions in the given location.
func New(runner *jobs.Runner, logger *zap.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		runner: runner,
		logger: logger,
	}
}

// Register parses the profile's cron expression and adds a recurring backup
// trigger for it.
func (s *Scheduler) Register(profile config.ServerProfile) error {
	schedule, err := cron.ParseStandard(profile.Schedule)
	if err != nil {
		return &InvalidScheduleError{ServerID: profile.ID, Expr: profile.Schedule, Err: err}
	}
	p := profile
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		// Jobs run on a background context so a process shutdown drains
		// them instead of cancelling mid-lifecycle.
		s.runner.Backup(context.Background(), p, false)
	}))
	s.logger.Info("scheduled backup",
		zap.String("server", profile.ID),
		zap.String("name", profile.Name),
		zap.String("schedule", profile.Schedule))
	return nil
}

// Registered reports how many servers have active triggers.
func (s *Scheduler) Registered() int {
	return len(s.cron.Entries())
}

// Run starts the timers and blocks until ctx is cancelled, then stops
// dispatching and waits for in-flight jobs to complete, including their
// workload-restart phase.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("servers", s.Registered()))
	<-ctx.Done()
	s.logger.Info("shutdown requested, draining in-flight jobs")
	drain := s.cron.Stop()
	<-drain.Done()
	s.logger.Info("scheduler stopped")
}
