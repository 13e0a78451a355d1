// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package hypervisorstats

// Maps a raw counter of the hypervisor listing to the name it is published under.
type MetricMapping struct {
	// Field of the hypervisor record, e.g. "memory_mb_used".
	RawField string
	// Published metric name, e.g. "used_ram".
	Name string
	// Unit of the metric, empty if the metric is a plain count.
	Unit string
}

// Canonical mapping from hypervisor fields to published metric names.
//
// Names and units are part of the published interface and must not change.
var ValueMap = []MetricMapping{
	{RawField: "current_workload", Name: "running_tasks"},
	{RawField: "running_vms", Name: "running_instances"},
	{RawField: "local_gb_used", Name: "used_disk", Unit: "GB"},
	{RawField: "free_disk_gb", Name: "free_disk", Unit: "GB"},
	{RawField: "memory_mb_used", Name: "used_ram", Unit: "MB"},
	{RawField: "free_ram_mb", Name: "free_ram", Unit: "MB"},
	{RawField: "vcpus_used", Name: "used_vcpus"},
}

const (
	// Free vcpus under the cpu allocation ratio.
	MetricFreeVCPUs = "free_vcpus"
	// Percentage of free memory of an aggregate.
	MetricFreeRAMPercent = "free_ram_percent"

	// Inputs of the derived metrics.
	metricUsedRAM = "used_ram"
	metricFreeRAM = "free_ram"

	fieldHostname  = "hypervisor_hostname"
	fieldVCPUs     = "vcpus"
	fieldVCPUsUsed = "vcpus_used"
)
