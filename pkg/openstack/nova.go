// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package openstack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/keystone"
	"github.com/gophercloud/gophercloud/v2"
)

// Microversion used for all nova requests.
//
// Since 2.53, the hypervisor id and service id is a UUID, and the hypervisor
// listing is paginated with hypervisors_links.
const NovaMicroversion = "2.53"

// Create a nova client from the compute endpoint of the keystone catalog.
func NovaClient(ctx context.Context, session keystone.Session) (*OpenstackClient, error) {
	if err := session.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("failed to authenticate keystone: %w", err)
	}
	serviceType := "compute"
	url, err := session.Endpoint(serviceType)
	if err != nil {
		return nil, fmt.Errorf("failed to find nova endpoint: %w", err)
	}
	slog.Info("using nova endpoint", "url", url, "microversion", NovaMicroversion)
	serviceClient := &gophercloud.ServiceClient{
		ProviderClient: session.ProviderClient(),
		Endpoint:       gophercloud.NormalizeURL(url),
		Type:           serviceType,
		Microversion:   NovaMicroversion,
	}
	return &OpenstackClient{
		serviceClient:       serviceClient,
		apiVersionHeaderKey: "X-OpenStack-Nova-API-Version",
		apiVersionHeader:    NovaMicroversion,
	}, nil
}
