// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"errors"
	"fmt"
	"strings"
)

// Check the keystone configuration.
func (c KeystoneConfig) Validate() error {
	if c.URL == "" {
		return errors.New("missing keystone url")
	}
	if !strings.Contains(c.URL, "/v3") {
		return fmt.Errorf("expected v3 Keystone URL, but got %s", c.URL)
	}
	// OpenStack urls should end without a slash.
	if strings.HasSuffix(c.URL, "/") {
		return fmt.Errorf("openstack url %s should not end with a slash", c.URL)
	}
	return nil
}

// Check the monitoring configuration.
func (c MonitoringConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid monitoring port %d", c.Port)
	}
	return nil
}
