// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package hypervisorstats

// Raw counters of one compute host.
type HostStats struct {
	// Hostname without the domain.
	Hostname string
	// Counters by raw field name.
	Counters map[string]float64
}

// Get the counter for the raw field, or 0 if the hypervisor did not report it.
func (h HostStats) Counter(field string) float64 {
	return h.Counters[field]
}

// Nova aggregate used for capacity rollups.
type Group struct {
	Name string
	ID   string
	// Member hostnames without the domain.
	Hosts map[string]struct{}
}

// Check if the host is a member of the group.
func (g Group) Contains(hostname string) bool {
	_, ok := g.Hosts[hostname]
	return ok
}

// Metadata attached to a metric record.
type Tags struct {
	Hostname  string
	GroupName string
	GroupID   string
	Unit      string
	// Set on rollups, where the sink must not attach its own hostname.
	DiscardHostname bool
}

// Level of the rollup a metric record belongs to.
type Scope string

const (
	ScopeHost      Scope = "host"
	ScopeAggregate Scope = "aggregate"
	ScopeTotal     Scope = "total"
)

// Single named value emitted by the aggregation engine.
type MetricRecord struct {
	Name  string
	Value float64
	Tags  Tags
}

// Get the rollup level of the record from its tags.
func (r MetricRecord) Scope() Scope {
	switch {
	case r.Tags.GroupName != "":
		return ScopeAggregate
	case r.Tags.DiscardHostname:
		return ScopeTotal
	default:
		return ScopeHost
	}
}
