// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sapcc/go-bits/jobloop"
)

// Returned by RunOnce when the previous run has not finished yet.
var ErrRunInProgress = errors.New("task: previous run still in progress")

// Runner is a generic task runner for periodic tasks.
//
// The runner guarantees that at most one run of the task is in progress at
// any time, also when RunOnce is called from outside the periodic loop.
type Runner struct {
	// The interval at which to run the task.
	Interval time.Duration
	// The name of the task.
	Name string

	// If set, this function is called once at the start of the runner.
	Init func(ctx context.Context) error
	// If set, this function is called on each task run.
	Run func(ctx context.Context) error

	mu sync.Mutex
}

// Trigger a single run of the task.
func (r *Runner) RunOnce(ctx context.Context) error {
	if !r.mu.TryLock() {
		slog.Warn("task: skipping run, previous run still in progress", "name", r.Name)
		return ErrRunInProgress
	}
	defer r.mu.Unlock()
	if r.Run == nil {
		return nil
	}
	slog.Debug("task: running", "name", r.Name)
	return r.Run(ctx)
}

// Start the task runner, which will run the task at the specified interval
// until the context is cancelled. The first run happens right away.
func (r *Runner) Start(ctx context.Context) error {
	if r.Interval <= 0 {
		return errors.New("task: interval must be positive")
	}
	slog.Info("task: starting runner", "name", r.Name, "interval", r.Interval)
	if r.Init != nil {
		if err := r.Init(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		if err := r.RunOnce(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
			slog.Error("task: run failed", "name", r.Name, "err", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			slog.Info("task: stopping runner", "name", r.Name)
			return nil
		}
	}
}

// Start the task runner after a jittered delay of half an interval, so that
// restarted replicas do not query the API at the same moment.
func (r *Runner) StartWithJitter(ctx context.Context) error {
	select {
	case <-time.After(jobloop.DefaultJitter(r.Interval / 2)):
	case <-ctx.Done():
		return nil
	}
	return r.Start(ctx)
}
