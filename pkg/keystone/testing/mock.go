// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package keystone

import (
	"context"

	"github.com/gophercloud/gophercloud/v2"
)

// Keystone session whose catalog points every service to the same url.
type MockSession struct {
	URL string
	// If set, returned by Authenticate.
	AuthErr error
	// Service types passed to Endpoint, in call order.
	Requested []string
}

func (m *MockSession) Authenticate(ctx context.Context) error {
	return m.AuthErr
}

func (m *MockSession) ProviderClient() *gophercloud.ProviderClient {
	return &gophercloud.ProviderClient{}
}

func (m *MockSession) Endpoint(serviceType string) (string, error) {
	m.Requested = append(m.Requested, serviceType)
	return m.URL, nil
}
