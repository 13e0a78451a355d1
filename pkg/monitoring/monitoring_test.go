// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/conf"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistry(t *testing.T) {
	config := conf.MonitoringConfig{
		Labels: map[string]string{
			"env": "test",
		},
	}
	registry := NewRegistry(config)

	if registry == nil {
		t.Fatalf("expected registry to be non-nil")
	}
	if registry.config.Labels["env"] != "test" {
		t.Fatalf("expected registry config label 'env' to be 'test', got %v", registry.config.Labels["env"])
	}
}

func TestRegistry_Gather(t *testing.T) {
	config := conf.MonitoringConfig{
		Labels: map[string]string{
			"env": "test",
		},
	}
	registry := NewRegistry(config)

	// Register a custom metric
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})
	registry.MustRegister(counter)
	counter.Inc()

	// Gather metrics
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Check that the custom label is added to all metrics
	for _, family := range families {
		for _, metric := range family.Metric {
			found := false
			for _, label := range metric.Label {
				if label.GetName() == "env" && label.GetValue() == "test" {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected label env=test on %s", family.GetName())
			}
		}
	}
}

func TestRegistry_GatherKeepsExistingLabel(t *testing.T) {
	registry := NewRegistry(conf.MonitoringConfig{
		Labels: map[string]string{"hostname": "collector"},
	})
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "A test gauge",
	}, []string{"hostname"})
	registry.MustRegister(gauge)
	gauge.WithLabelValues("node001").Set(1)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, family := range families {
		if family.GetName() != "test_gauge" {
			continue
		}
		labels := family.Metric[0].Label
		if len(labels) != 1 || labels[0].GetValue() != "node001" {
			t.Errorf("expected the metric label to win, got %v", labels)
		}
		return
	}
	t.Fatal("test_gauge not gathered")
}

func TestRegistry_Handler(t *testing.T) {
	registry := NewRegistry(conf.MonitoringConfig{Labels: map[string]string{"region": "qa-de-1"}})
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "Test gauge"})
	gauge.Set(3)
	registry.MustRegister(gauge)
	server := httptest.NewServer(registry.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(string(body), `test_gauge{region="qa-de-1"} 3`) {
		t.Errorf("expected labelled gauge in output, got:\n%s", body)
	}

	up, err := http.Get(server.URL + "/up")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	up.Body.Close()
	if up.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 on /up, got %d", up.StatusCode)
	}
}
