// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"time"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/internal/hypervisorstats"
)

// Plugin name all samples are reported under.
const Plugin = "openstack_nova"

const (
	aggregatePrefix = "aggregate_"
	totalPrefix     = "total_"
)

// Metadata of a sample as understood by the monitoring pipeline.
type Meta struct {
	Hostname    string `json:"hostname,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Aggregate   string `json:"aggregate,omitempty"`
	AggregateID string `json:"aggregate_id,omitempty"`
	// The receiver must not attach its own hostname to this sample.
	DiscardHostname bool `json:"discard_hostname,omitempty"`
}

// Timestamped value handed to the sinks.
type Sample struct {
	Plugin    string    `json:"plugin"`
	Instance  string    `json:"instance"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	// Identifies all samples of one collection cycle.
	CycleID string `json:"cycle_id"`
	Meta    Meta   `json:"meta"`
}

// Translate a metric record into a sample.
//
// Aggregate records are named "aggregate_<name>" and fleet-wide totals
// "total_<name>", so that they never collide with the per-host series.
func NewSample(record hypervisorstats.MetricRecord, timestamp time.Time, cycleID string) Sample {
	sample := Sample{
		Plugin:    Plugin,
		Instance:  record.Name,
		Value:     record.Value,
		Timestamp: timestamp,
		CycleID:   cycleID,
		Meta: Meta{
			Hostname:        record.Tags.Hostname,
			Unit:            record.Tags.Unit,
			DiscardHostname: record.Tags.DiscardHostname,
		},
	}
	switch record.Scope() {
	case hypervisorstats.ScopeAggregate:
		sample.Instance = aggregatePrefix + record.Name
		sample.Meta.Aggregate = record.Tags.GroupName
		sample.Meta.AggregateID = record.Tags.GroupID
	case hypervisorstats.ScopeTotal:
		sample.Instance = totalPrefix + record.Name
	}
	return sample
}
