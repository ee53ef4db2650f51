package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/PavelZaytsev/notion-task-alerts/pkg/alert"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/clock"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/notify"
	"github.com/PavelZaytsev/notion-task-alerts/pkg/task"
)

// FetchFunc returns the day's raw batch of normalized tasks. The scheduler
// treats it as opaque: any error means "keep the current active set this
// cycle".
type FetchFunc func(ctx context.Context, day time.Time) ([]*task.Task, error)

// Scheduler drives the poll loop: an outer cycle that refetches and
// reconciles the active set, containing a fixed run of evaluation ticks.
// The whole loop is single-threaded and owns the active set outright.
type Scheduler struct {
	fetch    FetchFunc
	notifier notify.Notifier
	clk      clock.Clock
	active   *task.Set

	checksPerCycle int
	checkInterval  time.Duration
	backoffDelay   time.Duration

	log *log.Logger
}

type Options struct {
	ChecksPerCycle int
	CheckInterval  time.Duration
	BackoffDelay   time.Duration
}

func New(fetch FetchFunc, notifier notify.Notifier, clk clock.Clock, opts Options, logger *log.Logger) *Scheduler {
	return &Scheduler{
		fetch:          fetch,
		notifier:       notifier,
		clk:            clk,
		active:         task.NewSet(),
		checksPerCycle: opts.ChecksPerCycle,
		checkInterval:  opts.CheckInterval,
		backoffDelay:   opts.BackoffDelay,
		log:            logger.With("component", "scheduler"),
	}
}

// Run loops until ctx is canceled. No error short of cancellation stops the
// loop: a cycle that blows up is logged and followed by a fixed cool-down
// before the next attempt.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("starting poll loop",
		"checks_per_cycle", s.checksPerCycle,
		"check_interval", s.checkInterval,
	)

	iteration := 0
	for {
		iteration++
		err := s.cycle(ctx)
		if ctx.Err() != nil {
			s.log.Info("shutting down", "iterations", iteration)
			return nil
		}
		if err != nil {
			s.log.Error("cycle failed, backing off", "iteration", iteration, "delay", s.backoffDelay, "err", err)
			if !sleep(ctx, s.backoffDelay) {
				s.log.Info("shutting down", "iterations", iteration)
				return nil
			}
		}
	}
}

// RunOnce performs a single refresh followed by a single evaluation tick.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.tick(ctx)
	return nil
}

// cycle is one outer iteration: refresh, then the inner run of evaluation
// ticks. A panic anywhere inside is converted into an error so a bad cycle
// costs at most one backoff, never the process.
func (s *Scheduler) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()

	// A failed fetch is transient: the current active set stays in place
	// and evaluation proceeds against it.
	if ferr := s.refresh(ctx); ferr != nil {
		s.log.Warn("refresh failed, keeping current tasks", "active", s.active.Len(), "err", ferr)
	}

	for i := 0; i < s.checksPerCycle; i++ {
		s.tick(ctx)
		if i < s.checksPerCycle-1 {
			if !sleep(ctx, s.checkInterval) {
				return nil
			}
		}
	}
	return nil
}

// refresh fetches today's batch and reconciles it into the active set.
func (s *Scheduler) refresh(ctx context.Context) error {
	day := s.clk.Now()
	fetched, err := s.fetch(ctx, day)
	if err != nil {
		return err
	}

	added, updated, removed := s.active.Reconcile(fetched)
	s.log.Info("active tasks reconciled",
		"active", s.active.Len(),
		"added", added,
		"updated", updated,
		"removed", removed,
	)
	return nil
}

// tick evaluates every active task at the current instant and dispatches
// whatever fired. Fired flags are already set by the time dispatch runs, so
// a sink failure is logged and dropped, never retried.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.clk.Now()
	for _, t := range s.active.Tasks() {
		for _, a := range alert.Evaluate(t, now) {
			s.log.Info("alert fired", "stage", a.Stage, "task", t.Title)
			if err := s.notifier.Send(ctx, a); err != nil {
				s.log.Error("dispatch failed", "stage", a.Stage, "task", t.Title, "err", err)
			}
		}
	}
}

// sleep waits for d or until ctx is canceled; it reports false on
// cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
