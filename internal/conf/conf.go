// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"time"

	libconf "github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/conf"
	"github.com/majewsky/gg/option"
)

const (
	defaultIntervalSeconds = 60
	defaultTopicPrefix     = "openstack/nova/hypervisor-stats"
)

// Configuration for the mqtt sink.
type MQTTSinkConfig struct {
	Enabled bool `json:"enabled"`
	// Samples are published to "<topicPrefix>/<instance>".
	TopicPrefix string `json:"topicPrefix,omitempty"`
}

// Configuration for the database sink.
type DBSinkConfig struct {
	Enabled bool `json:"enabled"`
}

// Sinks the collected samples are dispatched to.
type SinksConfig struct {
	// Expose the samples of the last cycle on the metrics endpoint.
	Prometheus bool `json:"prometheus"`
	// Write every sample as a debug log line.
	Log  bool           `json:"log"`
	MQTT MQTTSinkConfig `json:"mqtt"`
	DB   DBSinkConfig   `json:"db"`
}

// Configuration for the hypervisor stats collection.
type HypervisorStatsConfig struct {
	// Oversubscription ratio for vcpus. Free vcpus are only reported if set.
	CPUAllocationRatio *float64 `json:"cpuAllocationRatio,omitempty"`
	// Seconds between two collection cycles, 60 if unset.
	IntervalSeconds *int `json:"intervalSeconds,omitempty"`

	Sinks SinksConfig `json:"sinks"`
}

// Get the cpu allocation ratio as option.
func (c HypervisorStatsConfig) Ratio() option.Option[float64] {
	if c.CPUAllocationRatio == nil {
		return option.None[float64]()
	}
	return option.Some(*c.CPUAllocationRatio)
}

// Get the interval between two collection cycles.
func (c HypervisorStatsConfig) Interval() time.Duration {
	seconds := defaultIntervalSeconds
	if c.IntervalSeconds != nil {
		seconds = *c.IntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// Get the topic prefix of the mqtt sink.
func (c MQTTSinkConfig) Prefix() string {
	if c.TopicPrefix == "" {
		return defaultTopicPrefix
	}
	return c.TopicPrefix
}

type Config struct {
	HypervisorStatsConfig `json:"hypervisorStats"`

	// Lib modules configs.
	libconf.MonitoringConfig `json:"monitoring"`
	libconf.LoggingConfig    `json:"logging"`
	libconf.DBConfig         `json:"db"`
	libconf.MQTTConfig       `json:"mqtt"`

	libconf.KeystoneConfig `json:"keystone"`
}
