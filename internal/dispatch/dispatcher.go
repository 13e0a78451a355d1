// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/internal/hypervisorstats"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Destination for samples.
type Sink interface {
	// Name of the sink, used in logs and metrics.
	Name() string
	// Accept a single sample.
	Submit(ctx context.Context, sample Sample) error
}

// Sink that needs to know when all samples of a cycle were submitted.
type Committer interface {
	Sink
	// Called once after the last sample of the cycle.
	Commit(ctx context.Context, cycleID string) error
}

// Source of the metric records of one cycle.
type Source interface {
	Collect(ctx context.Context) iter.Seq[hypervisorstats.MetricRecord]
}

// Forwards metric records to all sinks, in order and one by one.
type Dispatcher struct {
	sinks   []Sink
	monitor Monitor
	// Clock used to timestamp the samples of a cycle.
	now func() time.Time
}

// Create a new dispatcher for the given sinks.
func NewDispatcher(monitor Monitor, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, monitor: monitor, now: time.Now}
}

// Run one collection cycle from the source and dispatch its records.
func (d *Dispatcher) RunCycle(ctx context.Context, source Source) error {
	if d.monitor.CycleTimer != nil {
		timer := prometheus.NewTimer(d.monitor.CycleTimer)
		defer timer.ObserveDuration()
	}
	_, err := d.Dispatch(ctx, source.Collect(ctx))
	return err
}

// Dispatch all records of one cycle and return the number of samples.
//
// Every sample is handed to every sink. A sink failing on a sample does not
// keep the sample from the other sinks, nor later samples from that sink.
// Sinks are only committed if the cycle was not cancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, records iter.Seq[hypervisorstats.MetricRecord]) (int, error) {
	cycleID := uuid.NewString()
	timestamp := d.now()
	count := 0
	for record := range records {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		sample := NewSample(record, timestamp, cycleID)
		for _, sink := range d.sinks {
			if err := sink.Submit(ctx, sample); err != nil {
				d.sinkFailed(sink, "failed to submit sample", err, "instance", sample.Instance)
			}
		}
		count++
	}
	for _, sink := range d.sinks {
		committer, ok := sink.(Committer)
		if !ok {
			continue
		}
		if err := committer.Commit(ctx, cycleID); err != nil {
			d.sinkFailed(sink, "failed to commit cycle", err)
		}
	}
	slog.Info("dispatch: cycle done", "cycle", cycleID, "samples", count)
	return count, nil
}

func (d *Dispatcher) sinkFailed(sink Sink, msg string, err error, args ...any) {
	args = append([]any{"sink", sink.Name(), "error", err}, args...)
	slog.Error("dispatch: "+msg, args...)
	if d.monitor.SinkErrors != nil {
		d.monitor.SinkErrors.WithLabelValues(sink.Name()).Inc()
	}
}
