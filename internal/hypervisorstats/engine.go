// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package hypervisorstats

import (
	"iter"
	"log/slog"
	"math"
	"slices"

	"github.com/majewsky/gg/option"
)

// Derives per-host, per-aggregate and fleet-wide metrics from host stats.
type Engine struct {
	mapping []MetricMapping
	// Cpu allocation ratio, None disables the free vcpus metric.
	ratio option.Option[float64]
}

// Create a new engine for the given mapping and cpu allocation ratio.
func NewEngine(mapping []MetricMapping, ratio option.Option[float64]) *Engine {
	if !ratio.IsSome() {
		slog.Warn("hypervisorstats: no cpu allocation ratio configured, not reporting " + MetricFreeVCPUs)
	}
	return &Engine{mapping: mapping, ratio: ratio}
}

// Free vcpus of a host: floor(ratio * vcpus) - vcpusUsed.
//
// The floor rounds towards negative infinity, so the result is never more
// than the host can actually schedule.
func FreeVCPUs(ratio, vcpus, vcpusUsed float64) float64 {
	return math.Floor(ratio*vcpus) - vcpusUsed
}

// Percentage of free ram, rounded half to even on 2 decimal places.
// Returns false if there is no ram to relate to.
func FreeRAMPercent(usedRAM, freeRAM float64) (float64, bool) {
	sum := usedRAM + freeRAM
	if sum <= 0 {
		return 0, false
	}
	return math.RoundToEven(100*freeRAM/sum*100) / 100, true
}

// Names of the metrics accumulated on every rollup level, in emission order.
func (e *Engine) trackedNames() []string {
	names := make([]string, 0, len(e.mapping)+1)
	for _, m := range e.mapping {
		names = append(names, m.Name)
	}
	if e.ratio.IsSome() {
		names = append(names, MetricFreeVCPUs)
	}
	return names
}

// Run the engine over the hosts and groups.
//
// The sequence yields per-host records in host order, then the records of
// every group sorted by group name, then the fleet-wide totals. Rollups are
// only complete once all hosts were consumed, so stopping the iteration
// early skips them.
func (e *Engine) Run(groups map[string]Group, hosts []HostStats) iter.Seq[MetricRecord] {
	return func(yield func(MetricRecord) bool) {
		names := e.trackedNames()
		total := NewAccumulator(names...)

		groupNames := make([]string, 0, len(groups))
		for name := range groups {
			groupNames = append(groupNames, name)
		}
		slices.Sort(groupNames)

		// Accumulators of the groups each host belongs to.
		groupAccs := make(map[string]*Accumulator, len(groups))
		memberOf := make(map[string][]*Accumulator)
		for _, name := range groupNames {
			acc := NewAccumulator(names...)
			groupAccs[name] = acc
			for host := range groups[name].Hosts {
				memberOf[host] = append(memberOf[host], acc)
			}
		}

		add := func(host, name string, value float64) {
			total.Add(name, value)
			for _, acc := range memberOf[host] {
				acc.Add(name, value)
			}
		}

		for _, host := range hosts {
			for _, m := range e.mapping {
				value := host.Counter(m.RawField)
				record := MetricRecord{
					Name:  m.Name,
					Value: value,
					Tags:  Tags{Hostname: host.Hostname, Unit: m.Unit},
				}
				if !yield(record) {
					return
				}
				add(host.Hostname, m.Name, value)
			}
			if ratio, ok := e.ratio.Unpack(); ok {
				value := FreeVCPUs(ratio, host.Counter(fieldVCPUs), host.Counter(fieldVCPUsUsed))
				record := MetricRecord{
					Name:  MetricFreeVCPUs,
					Value: value,
					Tags:  Tags{Hostname: host.Hostname},
				}
				if !yield(record) {
					return
				}
				add(host.Hostname, MetricFreeVCPUs, value)
			}
		}

		for _, name := range groupNames {
			group, acc := groups[name], groupAccs[name]
			if pct, ok := FreeRAMPercent(acc.Get(metricUsedRAM), acc.Get(metricFreeRAM)); ok {
				acc.Derive(MetricFreeRAMPercent, pct)
			}
			tags := Tags{GroupName: group.Name, GroupID: group.ID, DiscardHostname: true}
			ok := acc.Each(func(metric string, value float64) bool {
				return yield(MetricRecord{Name: metric, Value: value, Tags: tags})
			})
			if !ok {
				return
			}
		}

		total.Each(func(metric string, value float64) bool {
			return yield(MetricRecord{Name: metric, Value: value, Tags: Tags{DiscardHostname: true}})
		})
	}
}
