// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package schedule drives github.com/go-co-op/gocron/v2 jobs off a
// recurrence's Next iterator instead of gocron's own cron/interval
// job types: occurrences are pulled from the iterator a bounded
// window at a time and each is registered as a one-time job, with the
// window refilled as jobs fire so an unbounded rule never needs all
// of its occurrences in memory at once.
package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/calrecur/rrule-go"
)

// DefaultWindow is how many upcoming occurrences Runner keeps
// scheduled with gocron at any one time.
const DefaultWindow = 32

// Task is the work a Runner performs at each occurrence.
type Task func(occurrence time.Time)

// Runner schedules a recurrence's occurrences onto a gocron scheduler,
// a fixed-size window at a time. It is not safe for concurrent calls
// to Start/Stop from multiple goroutines.
type Runner struct {
	scheduler gocron.Scheduler
	next      rrule.Next
	task      Task
	window    int

	mu      sync.Mutex
	started bool
	jobs    []gocron.Job
}

// NewRunner builds a Runner that pulls occurrences from next and runs
// task at each one, keeping at most window jobs scheduled ahead. A
// non-positive window falls back to DefaultWindow. loc sets the
// scheduler's own clock; it does not need to match the recurrence's
// location since next already yields absolute instants.
func NewRunner(next rrule.Next, task Task, window int, loc *time.Location) (*Runner, error) {
	if next == nil {
		return nil, fmt.Errorf("schedule: next iterator is required")
	}
	if task == nil {
		return nil, fmt.Errorf("schedule: task is required")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if loc == nil {
		loc = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("schedule: creating scheduler: %w", err)
	}

	return &Runner{
		scheduler: s,
		next:      next,
		task:      task,
		window:    window,
	}, nil
}

// Start fills the look-ahead window and starts the underlying
// scheduler. Calling Start more than once is a no-op.
func (run *Runner) Start() error {
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.started {
		return nil
	}
	if err := run.fillLocked(); err != nil {
		return err
	}
	run.started = true
	run.scheduler.Start()
	return nil
}

// Stop shuts down the underlying scheduler, cancelling any jobs still
// queued in the current window.
func (run *Runner) Stop() error {
	run.mu.Lock()
	defer run.mu.Unlock()
	if !run.started {
		return nil
	}
	run.started = false
	return run.scheduler.Shutdown()
}

// fillLocked tops up the window with new one-time jobs, each wrapped
// so it re-fills the window by one slot when it fires. Caller must
// hold run.mu.
func (run *Runner) fillLocked() error {
	for len(run.jobs) < run.window {
		occ, ok := run.next()
		if !ok {
			// Recurrence exhausted; nothing more to schedule.
			return nil
		}
		job, err := run.scheduleOneLocked(occ)
		if err != nil {
			return err
		}
		run.jobs = append(run.jobs, job)
	}
	return nil
}

func (run *Runner) scheduleOneLocked(occ time.Time) (gocron.Job, error) {
	job, err := run.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(occ)),
		gocron.NewTask(run.fire, occ),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule: registering occurrence %s: %w", occ, err)
	}
	return job, nil
}

// fire runs the task for occ, then drops the completed job from the
// window and refills it from the iterator.
func (run *Runner) fire(occ time.Time) {
	run.task(occ)

	run.mu.Lock()
	defer run.mu.Unlock()
	run.jobs = run.dropFinishedLocked()
	if run.started {
		_ = run.fillLocked()
	}
}

// dropFinishedLocked removes jobs gocron no longer lists as scheduled
// (one-time jobs deregister themselves once they fire).
func (run *Runner) dropFinishedLocked() []gocron.Job {
	live := make(map[string]bool)
	for _, j := range run.scheduler.Jobs() {
		live[j.ID().String()] = true
	}
	kept := run.jobs[:0]
	for _, j := range run.jobs {
		if live[j.ID().String()] {
			kept = append(kept, j)
		}
	}
	return kept
}

// Pending returns how many occurrences are currently scheduled ahead
// of the next fire.
func (run *Runner) Pending() int {
	run.mu.Lock()
	defer run.mu.Unlock()
	return len(run.jobs)
}
