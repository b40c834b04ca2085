// Package scheduler runs the board's periodic background jobs: a cron-driven
// reset on a fixed schedule and a keepalive heartbeat published to the event
// bus. It never reaches into board.Board's internals beyond the public
// Reset method, and never acquires the Board's lock itself (spec §5).
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Resetter is the subset of board.Board the scheduler depends on, kept
// narrow so tests can substitute a fake.
type Resetter interface {
	Reset()
}

// Scheduler wraps a cron.Cron instance. The Schedule methods return the
// cron entry ID of the job they register; the Scheduler does not keep these
// IDs and has no method to remove a single job.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler with second-level precision disabled (the
// standard five-field crontab syntax), matching cron/v3's default parser.
func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// ScheduleReset registers a job that calls board.Reset on the given cron
// expression (e.g. "0 */6 * * *" for every six hours) and publishes a reset
// event through onReset, if non-nil, for observers outside the process.
func (s *Scheduler) ScheduleReset(expr string, board Resetter, onReset func(time.Time)) (cron.EntryID, error) {
	return s.cron.AddFunc(expr, func() {
		board.Reset()
		if onReset != nil {
			onReset(time.Now())
		}
	})
}

// ScheduleKeepAlive registers a job that calls onTick on the given cron
// expression, independent of any board activity, used for the event bus
// heartbeat.
func (s *Scheduler) ScheduleKeepAlive(expr string, onTick func(time.Time)) (cron.EntryID, error) {
	return s.cron.AddFunc(expr, func() {
		onTick(time.Now())
	})
}

// Start begins running scheduled jobs in their own goroutine. Safe to call
// once; cron.Cron itself guards against a double start.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for any in-flight job to finish.
func (s *Scheduler) Stop() { <-s.cron.Stop().Done() }
