// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package hypervisorstats

// Running sums of a fixed set of metrics.
//
// All tracked metrics start at zero, so they are reported even when no
// host contributed to them. Derived metrics can be appended after the
// accumulation is done.
type Accumulator struct {
	names  []string
	values []float64
	index  map[string]int
}

// Create an accumulator tracking the given metrics, in the given order.
func NewAccumulator(names ...string) *Accumulator {
	a := &Accumulator{
		names:  make([]string, 0, len(names)+1),
		values: make([]float64, 0, len(names)+1),
		index:  make(map[string]int, len(names)+1),
	}
	for _, name := range names {
		a.track(name)
	}
	return a
}

func (a *Accumulator) track(name string) int {
	if i, ok := a.index[name]; ok {
		return i
	}
	a.index[name] = len(a.names)
	a.names = append(a.names, name)
	a.values = append(a.values, 0)
	return len(a.names) - 1
}

// Add the value to the metric. Untracked metrics are ignored.
func (a *Accumulator) Add(name string, value float64) {
	if i, ok := a.index[name]; ok {
		a.values[i] += value
	}
}

// Get the current value of the metric, 0 if untracked.
func (a *Accumulator) Get(name string) float64 {
	if i, ok := a.index[name]; ok {
		return a.values[i]
	}
	return 0
}

// Set a metric derived from the accumulated values, tracking it if needed.
func (a *Accumulator) Derive(name string, value float64) {
	a.values[a.track(name)] = value
}

// Call fn for every tracked metric in tracking order until fn returns false.
func (a *Accumulator) Each(fn func(name string, value float64) bool) bool {
	for i, name := range a.names {
		if !fn(name, a.values[i]) {
			return false
		}
	}
	return true
}

// Number of tracked metrics.
func (a *Accumulator) Len() int {
	return len(a.names)
}
