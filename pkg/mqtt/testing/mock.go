// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package mqtt

import (
	"context"
	"sync"
)

// Message recorded by the mock client.
type Message struct {
	Topic   string
	Payload any
}

// Mock mqtt client that records published messages.
type MockClient struct {
	// If set, returned by every publish.
	PublishErr error

	mu       sync.Mutex
	messages []Message
}

func (m *MockClient) Publish(ctx context.Context, topic string, payload any) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Topic: topic, Payload: payload})
	return nil
}

// All messages published so far, in publish order.
func (m *MockClient) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

func (m *MockClient) Connect() error {
	return nil
}

func (m *MockClient) Disconnect() {
	// Do nothing
}
