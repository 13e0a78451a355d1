// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package hypervisorstats

import (
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor is a collection of Prometheus metrics for the collection cycle.
type Monitor struct {
	// A histogram to measure how long each listing request takes.
	RequestTimer *prometheus.HistogramVec
	// A counter to observe failed listing requests.
	RequestFailures *prometheus.CounterVec
	// A counter to observe the number of emitted records by scope.
	RecordsCounter *prometheus.CounterVec
	// A gauge to observe the number of hosts of the last cycle.
	HostsGauge prometheus.Gauge
	// A gauge to observe the number of aggregates of the last cycle.
	AggregatesGauge prometheus.Gauge
}

// NewMonitor creates a new cycle monitor and registers the necessary Prometheus metrics.
func NewMonitor(registry *monitoring.Registry) Monitor {
	requestTimer := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hypervisor_stats_request_duration_seconds",
		Help:    "Duration of listing requests against nova",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	requestFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hypervisor_stats_request_failures_total",
		Help: "Number of failed listing requests against nova",
	}, []string{"endpoint"})
	recordsCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hypervisor_stats_records_total",
		Help: "Number of emitted metric records",
	}, []string{"scope"})
	hostsGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hypervisor_stats_hosts",
		Help: "Number of hypervisors seen in the last cycle",
	})
	aggregatesGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hypervisor_stats_aggregates",
		Help: "Number of aggregates seen in the last cycle",
	})
	registry.MustRegister(
		requestTimer,
		requestFailures,
		recordsCounter,
		hostsGauge,
		aggregatesGauge,
	)
	return Monitor{
		RequestTimer:    requestTimer,
		RequestFailures: requestFailures,
		RecordsCounter:  recordsCounter,
		HostsGauge:      hostsGauge,
		AggregatesGauge: aggregatesGauge,
	}
}
