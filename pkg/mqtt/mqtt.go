// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/conf"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sapcc/go-bits/jobloop"
)

// Returned while waiting out the pause after a failed connection attempt.
var ErrBrokerUnavailable = errors.New("mqtt: broker unavailable, not reconnecting yet")

// Pause between connection attempts to an unreachable broker.
const DefaultReconnectBackoff = 30 * time.Second

type Client interface {
	Connect() error
	// Publish the object as json to the topic.
	Publish(ctx context.Context, topic string, obj any) error
	Disconnect()
}

type client struct {
	conf conf.MQTTConfig
	// Monitor to track the connection.
	monitor Monitor
	// MQTT client to publish mqtt data.
	client mqtt.Client
	// Lock to prevent concurrent writes to the MQTT client.
	lock *sync.Mutex

	backoff time.Duration
	// No connection attempts before this point in time.
	retryAfter time.Time
	// Error of the last failed connection attempt.
	lastErr error
}

func NewClient(conf conf.MQTTConfig, monitor Monitor) Client {
	return &client{conf: conf, monitor: monitor, lock: &sync.Mutex{}, backoff: DefaultReconnectBackoff}
}

// Called when the connection to the mqtt broker is lost.
// The next publish will reconnect.
func (t *client) onUnexpectedConnectionLoss(_ mqtt.Client, err error) {
	slog.Error("mqtt: lost connection to broker", "err", err)
}

// Connect to the mqtt broker.
func (t *client) Connect() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.connect(context.Background())
}

// Connect without locking. The caller must hold the lock.
//
// After a failed attempt, further calls fail immediately until the
// backoff has passed.
func (t *client) connect(ctx context.Context) error {
	if t.client != nil && t.client.IsConnected() {
		return nil
	}
	if time.Now().Before(t.retryAfter) {
		return errors.Join(ErrBrokerUnavailable, t.lastErr)
	}
	if t.monitor.connectionAttempts != nil {
		t.monitor.connectionAttempts.Inc()
	}
	slog.Info("mqtt: connecting to broker", "url", t.conf.URL)
	opts := mqtt.NewClientOptions()
	opts.AddBroker(t.conf.URL)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetConnectRetry(false)
	opts.SetAutoReconnect(false)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	opts.SetConnectionLostHandler(t.onUnexpectedConnectionLoss)
	opts.SetClientID("hypervisor-stats-" + uuid.NewString())
	opts.SetOrderMatters(true)
	opts.SetProtocolVersion(4)
	opts.SetUsername(t.conf.Username)
	opts.SetPassword(t.conf.Password)

	c := mqtt.NewClient(opts)
	conn := c.Connect()
	if err := wait(ctx, conn); err != nil {
		if !conn.WaitTimeout(0) {
			// Drop the connection should it still come up.
			go func() {
				<-conn.Done()
				c.Disconnect(0)
			}()
		}
		t.lastErr = err
		t.retryAfter = time.Now().Add(jobloop.DefaultJitter(t.backoff))
		slog.Error("mqtt: failed to connect to broker", "err", err, "retryAfter", t.retryAfter)
		return err
	}
	t.client = c
	t.lastErr = nil
	t.retryAfter = time.Time{}
	slog.Info("mqtt: connected to broker")
	return nil
}

// Publish mqtt data to the mqtt broker.
func (t *client) Publish(ctx context.Context, topic string, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	// Connect if we aren't already.
	if err := t.connect(ctx); err != nil {
		return err
	}
	if err := wait(ctx, t.client.Publish(topic, 1, false, data)); err != nil {
		if t.monitor.publishFailures != nil {
			t.monitor.publishFailures.Inc()
		}
		return err
	}
	return nil
}

// Wait for the token to complete or the context to end.
func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect from the mqtt broker.
func (t *client) Disconnect() {
	t.lock.Lock()
	c := t.client
	t.client = nil
	t.lock.Unlock()
	if c == nil {
		return
	}
	// Note: the disconnect will run in a goroutine.
	c.Disconnect(1000)
	// Wait for the disconnect to finish.
	for c.IsConnected() {
		time.Sleep(100 * time.Millisecond)
	}
	slog.Info("mqtt: disconnected from broker")
}
