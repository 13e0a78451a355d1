// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunner_RunOnce(t *testing.T) {
	tests := []struct {
		name        string
		runner      *Runner
		expectError bool
		expectRun   bool
	}{
		{
			name: "successful run",
			runner: &Runner{
				Name: "test-task",
				Run: func(ctx context.Context) error {
					return nil
				},
			},
			expectError: false,
			expectRun:   true,
		},
		{
			name: "run function that returns error",
			runner: &Runner{
				Name: "test-task",
				Run: func(ctx context.Context) error {
					return errors.New("run failed")
				},
			},
			expectError: true,
			expectRun:   true,
		},
		{
			name: "without run function",
			runner: &Runner{
				Name: "test-task",
				Run:  nil,
			},
			expectError: false,
			expectRun:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCalled := false
			if tt.runner.Run != nil {
				originalRun := tt.runner.Run
				tt.runner.Run = func(ctx context.Context) error {
					runCalled = true
					return originalRun(ctx)
				}
			}

			err := tt.runner.RunOnce(t.Context())
			if (err != nil) != tt.expectError {
				t.Errorf("RunOnce() error = %v, expectError %v", err, tt.expectError)
			}
			if runCalled != tt.expectRun {
				t.Errorf("Run function called = %v, expectRun %v", runCalled, tt.expectRun)
			}
		})
	}
}

func TestRunner_RunOnceIsExclusive(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	r := &Runner{
		Name: "slow-task",
		Run: func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		},
	}
	done := make(chan error)
	go func() { done <- r.RunOnce(t.Context()) }()
	<-started

	if err := r.RunOnce(t.Context()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Errorf("expected the first run to succeed, got %v", err)
	}
}

func TestRunner_Start(t *testing.T) {
	var runs atomic.Int32
	initCalled := false
	ctx, cancel := context.WithCancel(t.Context())
	r := &Runner{
		Name:     "periodic-task",
		Interval: 10 * time.Millisecond,
		Init: func(ctx context.Context) error {
			initCalled = true
			return nil
		},
		Run: func(ctx context.Context) error {
			if runs.Add(1) == 3 {
				cancel()
			}
			return errors.New("failures do not stop the runner")
		},
	}
	if err := r.Start(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !initCalled {
		t.Error("expected init to be called")
	}
	if runs.Load() < 3 {
		t.Errorf("expected at least 3 runs, got %d", runs.Load())
	}
}

func TestRunner_StartErrors(t *testing.T) {
	r := &Runner{Name: "no-interval"}
	if err := r.Start(t.Context()); err == nil {
		t.Error("expected an error for a missing interval")
	}
	r = &Runner{
		Name:     "failing-init",
		Interval: time.Second,
		Init: func(ctx context.Context) error {
			return errors.New("init failed")
		},
	}
	if err := r.Start(t.Context()); err == nil {
		t.Error("expected the init error to be returned")
	}
}

func TestRunner_StartWithJitterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	r := &Runner{Name: "cancelled", Interval: time.Hour}
	if err := r.StartWithJitter(ctx); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
