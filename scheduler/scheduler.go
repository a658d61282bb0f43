// Package scheduler fires the daily batch sign-in at a configured hour.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs a job once a day at a fixed local hour. A late wakeup
// (daemon suspended, clock jump) still runs the job once; the next tick is
// always computed from the current clock.
type Scheduler struct {
	hour int
	job  func(ctx context.Context)
	log  zerolog.Logger
	now  func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Scheduler) { s.now = nowFunc }
}

// New creates a Scheduler firing at hour (clamped to 0-23) every day.
func New(hour int, job func(ctx context.Context), options ...Option) *Scheduler {
	if hour < 0 {
		hour = 0
	}
	if hour > 23 {
		hour = 23
	}
	s := &Scheduler{
		hour: hour,
		job:  job,
		log:  zerolog.Nop(),
		now:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Start launches the schedule loop. It returns immediately; Stop cancels the
// loop and waits for an in-flight job to finish.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	s.log.Info().Int("hour", s.hour).Msg("daily sign-in schedule started")
}

// Stop cancels the loop and blocks until it exits.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		next := nextRun(s.now(), s.hour)
		s.log.Debug().Time("next", next).Msg("sleeping until next run")

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.job(ctx)
		if ctx.Err() != nil {
			return
		}
	}
}

// nextRun returns the next occurrence of hour:00 strictly after now.
func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
