// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/internal/conf"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/internal/dispatch"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/internal/hypervisorstats"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/internal/nova"
	libconf "github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/conf"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/db"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/keystone"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/monitoring"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/mqtt"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/openstack"
	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/task"
	"github.com/sapcc/go-api-declarations/bininfo"
	"github.com/sapcc/go-bits/httpext"
	"github.com/sapcc/go-bits/must"
	"go.uber.org/automaxprocs/maxprocs"
)

// Run the prometheus metrics server for monitoring.
func runMonitoringServer(ctx context.Context, registry *monitoring.Registry, config libconf.MonitoringConfig) {
	slog.Info("metrics listening", "port", config.Port)
	addr := fmt.Sprintf(":%d", config.Port)
	if err := httpext.ListenAndServeContext(ctx, addr, registry.Handler()); err != nil {
		panic(err)
	}
}

// Set up all sinks enabled in the config. The returned func releases them.
func setupSinks(ctx context.Context, config *conf.Config, registry *monitoring.Registry) ([]dispatch.Sink, func()) {
	var sinks []dispatch.Sink
	var closers []func()
	if config.Sinks.Prometheus {
		sink := dispatch.NewPrometheusSink()
		registry.MustRegister(sink)
		sinks = append(sinks, sink)
	}
	if config.Sinks.Log {
		sinks = append(sinks, dispatch.NewLogSink(nil))
	}
	if config.Sinks.MQTT.Enabled {
		mqttClient := mqtt.NewClient(config.MQTTConfig, mqtt.NewMQTTMonitor(registry))
		if err := mqttClient.Connect(); err != nil {
			panic("failed to connect to mqtt broker: " + err.Error())
		}
		closers = append(closers, mqttClient.Disconnect)
		sinks = append(sinks, dispatch.NewMQTTSink(mqttClient, config.Sinks.MQTT.Prefix()))
	}
	if config.Sinks.DB.Enabled {
		database := must.Return(db.NewPostgresDB(ctx, config.DBConfig, registry, db.NewDBMonitor(registry)))
		closers = append(closers, database.Close)
		sinks = append(sinks, must.Return(dispatch.NewDBSink(database)))
	}
	return sinks, func() {
		for _, closeSink := range closers {
			closeSink()
		}
	}
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		// If called with `--version`, report version and exit (the Dockerfile
		// uses this to check if the binary was built correctly)
		bininfo.HandleVersionArgument()
	}

	config := libconf.GetConfigOrDie[*conf.Config]()
	config.LoggingConfig.SetDefaultLogger()
	must.Succeed(config.Validate())

	// Set runtime concurrency to match CPU limit imposed by Kubernetes
	undoMaxprocs := must.Return(maxprocs.Set(maxprocs.Logger(slog.Debug)))
	defer undoMaxprocs()

	// Override User-Agent header for all requests made by this process
	// (logs will show e.g. "hypervisor-stats/d0c9faa" instead of "Go-http-client/2.0")
	wrap := httpext.WrapTransport(&http.DefaultTransport)
	wrap.SetOverrideUserAgent(bininfo.Component(), bininfo.VersionOr("rolling"))

	// This context will gracefully shutdown when the process receives the
	// standard shutdown signal SIGINT, with a 10-second delay to allow
	// Kubernetes to stop sending new requests well before the process starts
	// to shut down.
	ctx := httpext.ContextWithSIGINT(context.Background(), 10*time.Second)

	registry := monitoring.NewRegistry(config.MonitoringConfig)

	session := keystone.NewSession(config.KeystoneConfig)
	novaClient := must.Return(openstack.NovaClient(ctx, session))

	engine := hypervisorstats.NewEngine(hypervisorstats.ValueMap, config.Ratio())
	collector := hypervisorstats.NewCollector(
		nova.NewNovaAPI(novaClient),
		engine,
		hypervisorstats.NewMonitor(registry),
	)

	sinks, closeSinks := setupSinks(ctx, config, registry)
	defer closeSinks()
	dispatcher := dispatch.NewDispatcher(dispatch.NewDispatchMonitor(registry), sinks...)

	runner := &task.Runner{
		Name:     "hypervisor-stats",
		Interval: config.Interval(),
		Run: func(ctx context.Context) error {
			return dispatcher.RunCycle(ctx, collector)
		},
	}

	// Without an interval, collect a single cycle and exit.
	if config.Interval() == 0 {
		must.Succeed(runner.RunOnce(ctx))
		return
	}

	go runMonitoringServer(ctx, registry, config.MonitoringConfig)
	must.Succeed(runner.StartWithJitter(ctx)) // blocking
}
