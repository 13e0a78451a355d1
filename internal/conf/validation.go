// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"errors"
	"fmt"
)

// Check the hypervisor stats configuration on its own.
func (c HypervisorStatsConfig) Validate() error {
	if c.CPUAllocationRatio != nil && *c.CPUAllocationRatio <= 0 {
		return fmt.Errorf("cpu allocation ratio must be positive, got %v", *c.CPUAllocationRatio)
	}
	if c.IntervalSeconds != nil && *c.IntervalSeconds < 0 {
		return fmt.Errorf("interval must not be negative, got %d", *c.IntervalSeconds)
	}
	s := c.Sinks
	if !s.Prometheus && !s.Log && !s.MQTT.Enabled && !s.DB.Enabled {
		return errors.New("no sink enabled")
	}
	// A single cycle exits before anything could scrape it.
	if c.Interval() == 0 && s.Prometheus && !s.Log && !s.MQTT.Enabled && !s.DB.Enabled {
		return errors.New("prometheus as the only sink needs a positive interval")
	}
	return nil
}

// Check the whole configuration, including the dependencies between modules.
func (c *Config) Validate() error {
	if err := c.KeystoneConfig.Validate(); err != nil {
		return err
	}
	if err := c.MonitoringConfig.Validate(); err != nil {
		return err
	}
	if err := c.HypervisorStatsConfig.Validate(); err != nil {
		return err
	}
	if c.Sinks.MQTT.Enabled && c.MQTTConfig.URL == "" {
		return errors.New("mqtt sink is enabled but no mqtt url is configured")
	}
	if c.Sinks.DB.Enabled && c.DBConfig.Host == "" {
		return errors.New("db sink is enabled but no db host is configured")
	}
	return nil
}
