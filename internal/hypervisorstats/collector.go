// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package hypervisorstats

import (
	"context"
	"iter"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Source of the raw nova listings.
type Gateway interface {
	// List all host aggregates.
	ListAggregates(ctx context.Context) ([]RawRecord, error)
	// List all hypervisors with details.
	ListHypervisors(ctx context.Context) ([]RawRecord, error)
}

const (
	endpointAggregates  = "aggregates"
	endpointHypervisors = "hypervisors"
)

// Fetches the nova listings and runs the engine over them.
type Collector struct {
	gateway Gateway
	engine  *Engine
	monitor Monitor
}

// Create a new collector.
func NewCollector(gateway Gateway, engine *Engine, monitor Monitor) *Collector {
	return &Collector{gateway: gateway, engine: engine, monitor: monitor}
}

// Fetch both listings and return the records of this cycle.
//
// The listings are fetched before this function returns; iterating the
// sequence does no i/o. If the hypervisors cannot be listed, the sequence
// is empty. If only the aggregates cannot be listed, the sequence lacks the
// aggregate rollups. No error is returned in either case.
func (c *Collector) Collect(ctx context.Context) iter.Seq[MetricRecord] {
	var (
		aggregates, hypervisors       []RawRecord
		aggregatesErr, hypervisorsErr error
	)
	// Each listing keeps its own error, so the group never cancels the other.
	var eg errgroup.Group
	eg.Go(func() error {
		aggregates, aggregatesErr = c.list(ctx, endpointAggregates, c.gateway.ListAggregates)
		return nil
	})
	eg.Go(func() error {
		hypervisors, hypervisorsErr = c.list(ctx, endpointHypervisors, c.gateway.ListHypervisors)
		return nil
	})
	_ = eg.Wait()

	if hypervisorsErr != nil {
		slog.Warn("hypervisorstats: unable to list hypervisors, skipping cycle", "error", hypervisorsErr)
		return func(func(MetricRecord) bool) {}
	}
	if aggregatesErr != nil {
		slog.Warn("hypervisorstats: unable to list aggregates, skipping aggregate metrics", "error", aggregatesErr)
		aggregates = nil
	}

	groups := NormalizeGroups(aggregates)
	hosts := NormalizeHosts(hypervisors, c.engine.mapping)
	if c.monitor.HostsGauge != nil {
		c.monitor.HostsGauge.Set(float64(len(hosts)))
	}
	if c.monitor.AggregatesGauge != nil {
		c.monitor.AggregatesGauge.Set(float64(len(groups)))
	}
	slog.Debug("hypervisorstats: collected listings", "hosts", len(hosts), "aggregates", len(groups))
	if len(hosts) == 0 {
		slog.Warn("hypervisorstats: hypervisor listing is empty, skipping cycle")
		return func(func(MetricRecord) bool) {}
	}

	records := c.engine.Run(groups, hosts)
	if c.monitor.RecordsCounter == nil {
		return records
	}
	return func(yield func(MetricRecord) bool) {
		for record := range records {
			c.monitor.RecordsCounter.WithLabelValues(string(record.Scope())).Inc()
			if !yield(record) {
				return
			}
		}
	}
}

func (c *Collector) list(
	ctx context.Context,
	endpoint string,
	fn func(context.Context) ([]RawRecord, error),
) ([]RawRecord, error) {

	if c.monitor.RequestTimer != nil {
		hist := c.monitor.RequestTimer.WithLabelValues(endpoint)
		timer := prometheus.NewTimer(hist)
		defer timer.ObserveDuration()
	}
	records, err := fn(ctx)
	if err != nil && c.monitor.RequestFailures != nil {
		c.monitor.RequestFailures.WithLabelValues(endpoint).Inc()
	}
	return records, err
}
