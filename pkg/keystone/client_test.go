// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package keystone

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/conf"
)

const tokenResponse = `{"token": {"catalog": [{
	"type": "compute",
	"endpoints": [
		{"interface": "public", "region_id": "r1", "url": "https://nova.example.com/v2.1"},
		{"interface": "internal", "region_id": "r1", "url": "http://nova.internal:8774/v2.1"}
	]
}]}}`

func setupKeystoneMockServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, conf.KeystoneConfig) {
	t.Helper()
	server := httptest.NewServer(handler)
	keystoneConf := conf.KeystoneConfig{
		URL:                 server.URL + "/v3",
		OSUsername:          "collector",
		OSUserDomainName:    "default",
		OSPassword:          "password",
		OSProjectName:       "cloud_admin",
		OSProjectDomainName: "default",
	}
	return server, keystoneConf
}

func tokenHandler(t *testing.T, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Add("Content-Type", "application/json")
		w.Header().Add("X-Subject-Token", "token")
		w.WriteHeader(http.StatusCreated)
		if _, err := w.Write([]byte(tokenResponse)); err != nil {
			t.Fatalf("error writing response: %v", err)
		}
	}
}

func TestSession_Authenticate(t *testing.T) {
	var calls atomic.Int32
	server, keystoneConf := setupKeystoneMockServer(t, tokenHandler(t, &calls))
	defer server.Close()

	s := NewSession(keystoneConf)
	if s.ProviderClient() != nil {
		t.Fatal("expected no provider before authentication")
	}
	if err := s.Authenticate(t.Context()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.ProviderClient() == nil {
		t.Fatal("expected provider after authentication")
	}
	if err := s.Authenticate(t.Context()); err != nil {
		t.Fatalf("expected cached authentication, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected keystone to be called once, got %d", n)
	}
}

func TestSession_Endpoint(t *testing.T) {
	var calls atomic.Int32
	server, keystoneConf := setupKeystoneMockServer(t, tokenHandler(t, &calls))
	defer server.Close()

	tests := []struct {
		availability string
		expected     string
	}{
		{"", "https://nova.example.com/v2.1/"},
		{"public", "https://nova.example.com/v2.1/"},
		{"internal", "http://nova.internal:8774/v2.1/"},
	}
	for _, tt := range tests {
		t.Run("availability "+tt.availability, func(t *testing.T) {
			keystoneConf.Availability = tt.availability
			s := NewSession(keystoneConf)
			if err := s.Authenticate(t.Context()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			url, err := s.Endpoint("compute")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if url != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, url)
			}
		})
	}
}

func TestSession_EndpointNotAuthenticated(t *testing.T) {
	s := NewSession(conf.KeystoneConfig{})
	if _, err := s.Endpoint("compute"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSession_AuthenticateRejected(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}
	server, keystoneConf := setupKeystoneMockServer(t, handler)
	defer server.Close()

	s := NewSessionWithHTTPClient(keystoneConf, server.Client())
	if err := s.Authenticate(t.Context()); err == nil {
		t.Fatal("expected an error for rejected credentials")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected rejected credentials not to be retried, got %d calls", n)
	}
}

func TestSession_AuthenticateUnreachableCancelled(t *testing.T) {
	server, keystoneConf := setupKeystoneMockServer(t, func(http.ResponseWriter, *http.Request) {})
	server.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	s := NewSession(keystoneConf)
	if err := s.Authenticate(ctx); err == nil {
		t.Fatal("expected an error for unreachable keystone")
	}
	if s.ProviderClient() != nil {
		t.Error("expected no provider after failed authentication")
	}
}

func TestIsTransient(t *testing.T) {
	if !isTransient(errors.New("connection refused")) {
		t.Error("expected network errors to be transient")
	}
}
