// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package nova

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/internal/hypervisorstats"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/openstack"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/aggregates"
)

// API for the nova listings needed by the hypervisor stats.
type NovaAPI struct {
	// Authenticated nova client to fetch the data.
	client *openstack.OpenstackClient
}

// Create a new nova API on top of an authenticated nova client.
func NewNovaAPI(client *openstack.OpenstackClient) *NovaAPI {
	return &NovaAPI{client: client}
}

// Get all nova aggregates.
func (api *NovaAPI) ListAggregates(ctx context.Context) ([]hypervisorstats.RawRecord, error) {
	slog.Debug("fetching nova aggregates")
	pages, err := aggregates.List(api.client.ServiceClient()).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list aggregates: %w", err)
	}
	// Keep the records loosely typed, the collector decides which fields matter.
	data := &struct {
		Aggregates []hypervisorstats.RawRecord `json:"aggregates"`
	}{}
	if err := pages.(aggregates.AggregatesPage).ExtractInto(data); err != nil {
		return nil, fmt.Errorf("failed to parse aggregates: %w", err)
	}
	slog.Debug("fetched nova aggregates", "count", len(data.Aggregates))
	return data.Aggregates, nil
}

// Get all nova hypervisors with details, following pagination.
func (api *NovaAPI) ListHypervisors(ctx context.Context) ([]hypervisorstats.RawRecord, error) {
	slog.Debug("fetching nova hypervisors")
	var hypervisors []hypervisorstats.RawRecord
	if err := api.client.List(ctx, "os-hypervisors/detail", nil, "hypervisors", &hypervisors); err != nil {
		return nil, fmt.Errorf("failed to list hypervisors: %w", err)
	}
	slog.Debug("fetched nova hypervisors", "count", len(hypervisors))
	return hypervisors, nil
}
