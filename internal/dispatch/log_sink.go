// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"log/slog"
)

// Sink writing one info log line per sample.
type LogSink struct {
	logger *slog.Logger
}

// Create a new log sink. A nil logger uses the default logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Submit(ctx context.Context, sample Sample) error {
	s.logger.InfoContext(ctx, "dispatch: sample",
		"plugin", sample.Plugin,
		"instance", sample.Instance,
		"value", sample.Value,
		"hostname", sample.Meta.Hostname,
		"unit", sample.Meta.Unit,
		"aggregate", sample.Meta.Aggregate,
		"aggregate_id", sample.Meta.AggregateID,
		"discard_hostname", sample.Meta.DiscardHostname,
		"cycle", sample.CycleID,
	)
	return nil
}
