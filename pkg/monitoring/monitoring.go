// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package monitoring

import (
	"net/http"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/conf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Custom prometheus registry that adds functionality to the default registry.
type Registry struct {
	// Inherited prometheus registry.
	*prometheus.Registry
	// Custom configuration for the monitoring.
	config conf.MonitoringConfig
}

// Create a new registry with the given configuration.
// This registry will include the default go collector and process collector.
func NewRegistry(config conf.MonitoringConfig) *Registry {
	registry := &Registry{
		Registry: prometheus.NewRegistry(),
		config:   config,
	}
	// Add go execution stats and process metrics to the registry.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Custom gather method that adds custom labels to all metrics.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	families, err := r.Registry.Gather()
	if err != nil {
		return nil, err
	}
	// Add a custom label to all metrics. This is useful for distinguishing
	// the metrics of multiple collectors reporting for different regions.
	for name, value := range r.config.Labels {
		for _, family := range families {
			for _, metric := range family.Metric {
				if hasLabel(metric, name) {
					continue
				}
				metric.Label = append(metric.Label, &dto.LabelPair{
					Name:  &name,
					Value: &value,
				})
			}
		}
	}
	return families, nil
}

func hasLabel(metric *dto.Metric, name string) bool {
	for _, label := range metric.Label {
		if label.GetName() == name {
			return true
		}
	}
	return false
}

// Serve /metrics from this registry and /up as liveness probe.
//
// A failing collector does not fail the whole scrape, the metrics that
// could be gathered are still served.
func (r *Registry) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
		Registry:      r.Registry,
	}))
	mux.HandleFunc("/up", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
