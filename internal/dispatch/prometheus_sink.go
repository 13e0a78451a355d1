// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var prometheusSinkLabels = []string{"hostname", "aggregate", "aggregate_id", "unit"}

type seriesKey struct {
	instance string
	meta     Meta
}

// Sink exposing the samples of the last finished cycle as prometheus gauges.
//
// The series set changes with the hosts and aggregates in the cloud, so the
// sink is an unchecked collector that does not describe its metrics upfront.
type PrometheusSink struct {
	mu sync.Mutex
	// Samples of the cycle currently being dispatched.
	pendingCycle string
	pending      map[seriesKey]Sample
	// Samples exposed to scrapes.
	published map[seriesKey]Sample
}

// Create a new prometheus sink. It still needs to be registered.
func NewPrometheusSink() *PrometheusSink {
	return &PrometheusSink{}
}

func (s *PrometheusSink) Name() string {
	return "prometheus"
}

func (s *PrometheusSink) Submit(ctx context.Context, sample Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.pendingCycle != sample.CycleID {
		s.pendingCycle = sample.CycleID
		s.pending = make(map[seriesKey]Sample)
	}
	// Hypervisors sharing a short hostname would collide, the last one wins.
	s.pending[seriesKey{sample.Instance, sample.Meta}] = sample
	return nil
}

// Publish the samples of the cycle. A cycle without samples clears all series.
func (s *PrometheusSink) Commit(ctx context.Context, cycleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingCycle == cycleID {
		s.published = s.pending
	} else {
		s.published = nil
	}
	s.pending = nil
	s.pendingCycle = ""
	return nil
}

// Describe nothing, making this an unchecked collector.
func (s *PrometheusSink) Describe(ch chan<- *prometheus.Desc) {}

func (s *PrometheusSink) Collect(ch chan<- prometheus.Metric) {
	s.mu.Lock()
	published := s.published
	s.mu.Unlock()

	descs := make(map[string]*prometheus.Desc)
	for key, sample := range published {
		desc, ok := descs[key.instance]
		if !ok {
			desc = prometheus.NewDesc(
				sample.Plugin+"_"+sample.Instance,
				"Hypervisor statistic "+sample.Instance+" reported by nova",
				prometheusSinkLabels, nil,
			)
			descs[key.instance] = desc
		}
		metric, err := prometheus.NewConstMetric(
			desc, prometheus.GaugeValue, sample.Value,
			sample.Meta.Hostname, sample.Meta.Aggregate, sample.Meta.AggregateID, sample.Meta.Unit,
		)
		if err != nil {
			slog.Error("dispatch: failed to create metric", "instance", sample.Instance, "error", err)
			continue
		}
		ch <- metric
	}
}
