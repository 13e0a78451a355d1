// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/mqtt"
)

// Upper bound for publishing a single sample.
const mqttPublishTimeout = 5 * time.Second

// Sink publishing every sample as json to "<prefix>/<instance>".
type MQTTSink struct {
	client      mqtt.Client
	topicPrefix string
	timeout     time.Duration
}

// Create a new mqtt sink on a connected client.
func NewMQTTSink(client mqtt.Client, topicPrefix string) *MQTTSink {
	return &MQTTSink{
		client:      client,
		topicPrefix: strings.TrimSuffix(topicPrefix, "/"),
		timeout:     mqttPublishTimeout,
	}
}

func (s *MQTTSink) Name() string {
	return "mqtt"
}

func (s *MQTTSink) Submit(ctx context.Context, sample Sample) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Publish(ctx, s.topicPrefix+"/"+sample.Instance, sample)
}
