// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package hypervisorstats

import (
	"log/slog"
	"strings"
)

// Strip the domain from a fully qualified hostname.
func Hostname(fqdn string) string {
	host, _, _ := strings.Cut(fqdn, ".")
	return host
}

// Build the groups by name from the nova aggregates listing.
//
// Aggregates without a name are skipped. If two aggregates share a name,
// the later one wins.
func NormalizeGroups(aggregates []RawRecord) map[string]Group {
	groups := make(map[string]Group, len(aggregates))
	for _, agg := range aggregates {
		name := agg.String("name")
		if name == "" {
			slog.Warn("hypervisorstats: skipping aggregate without name", "id", agg.Identifier("id"))
			continue
		}
		hosts := make(map[string]struct{})
		for _, fqdn := range agg.Strings("hosts") {
			hosts[Hostname(fqdn)] = struct{}{}
		}
		groups[name] = Group{Name: name, ID: agg.Identifier("id"), Hosts: hosts}
	}
	return groups
}

// Build the host stats from the nova hypervisor detail listing.
//
// Only the fields named in the mapping and the fields needed for the free
// vcpus are kept. Missing fields count as 0. Hypervisors without a hostname
// are skipped since their values could not be attributed to any host.
func NormalizeHosts(hypervisors []RawRecord, mapping []MetricMapping) []HostStats {
	hosts := make([]HostStats, 0, len(hypervisors))
	for _, hv := range hypervisors {
		hostname := Hostname(hv.String(fieldHostname))
		if hostname == "" {
			slog.Warn("hypervisorstats: skipping hypervisor without hostname", "id", hv.Identifier("id"))
			continue
		}
		counters := make(map[string]float64, len(mapping)+2)
		for _, m := range mapping {
			counters[m.RawField] = hv.Number(m.RawField)
		}
		counters[fieldVCPUs] = hv.Number(fieldVCPUs)
		counters[fieldVCPUsUsed] = hv.Number(fieldVCPUsUsed)
		hosts = append(hosts, HostStats{Hostname: hostname, Counters: counters})
	}
	return hosts
}
