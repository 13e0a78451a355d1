// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor is a collection of Prometheus metrics for the dispatcher.
type Monitor struct {
	// A histogram to measure how long each collection cycle takes.
	CycleTimer prometheus.Histogram
	// A counter to observe samples a sink could not accept.
	SinkErrors *prometheus.CounterVec
}

// NewDispatchMonitor creates a new dispatch monitor and registers the necessary Prometheus metrics.
func NewDispatchMonitor(registry *monitoring.Registry) Monitor {
	cycleTimer := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hypervisor_stats_cycle_duration_seconds",
		Help:    "Duration of a collection cycle including dispatch",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 15), // 0.01s to ~164s
	})
	sinkErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hypervisor_stats_sink_errors_total",
		Help: "Number of samples a sink failed to accept",
	}, []string{"sink"})
	registry.MustRegister(cycleTimer, sinkErrors)
	return Monitor{
		CycleTimer: cycleTimer,
		SinkErrors: sinkErrors,
	}
}
