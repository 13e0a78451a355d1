// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package keystone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cobaltcore-dev/nova-hypervisor-stats/pkg/conf"
	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/sapcc/go-bits/jobloop"
)

// Returned when the session is used before it was authenticated.
var ErrNotAuthenticated = errors.New("keystone: session is not authenticated")

// Availability used when the keystone config does not name one.
const DefaultAvailability = gophercloud.AvailabilityPublic

// Authenticated keystone session shared by all OpenStack service clients.
type Session interface {
	// Authenticate against keystone. Calling this again is a no-op.
	Authenticate(ctx context.Context) error
	// Provider client carrying the token, nil before authentication.
	ProviderClient() *gophercloud.ProviderClient
	// Look up a service endpoint in the catalog with the configured availability.
	Endpoint(serviceType string) (string, error)
}

type session struct {
	config conf.KeystoneConfig
	// Optional HTTP client to use for requests.
	httpClient *http.Client
	// Attempts before giving up on an unreachable keystone.
	maxAttempts int

	mu       sync.Mutex
	provider *gophercloud.ProviderClient
}

// Create a new keystone session. It needs to be authenticated before use.
func NewSession(config conf.KeystoneConfig) Session {
	return &session{config: config, maxAttempts: 5}
}

// Create a new keystone session sending its requests through the given client.
func NewSessionWithHTTPClient(config conf.KeystoneConfig, httpClient *http.Client) Session {
	return &session{config: config, httpClient: httpClient, maxAttempts: 5}
}

// Authenticate against keystone, retrying with jitter while keystone is
// unreachable. Rejected credentials fail right away.
//
// The token is renewed by gophercloud when it expires, so this only needs
// to be called once per process.
func (s *session) Authenticate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider != nil {
		return nil
	}
	authOptions := gophercloud.AuthOptions{
		IdentityEndpoint: s.config.URL,
		Username:         s.config.OSUsername,
		DomainName:       s.config.OSUserDomainName,
		Password:         s.config.OSPassword,
		AllowReauth:      true,
		Scope: &gophercloud.AuthScope{
			ProjectName: s.config.OSProjectName,
			DomainName:  s.config.OSProjectDomainName,
		},
	}
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		slog.Info("keystone: authenticating", "url", s.config.URL, "user", s.config.OSUsername, "attempt", attempt)
		var provider *gophercloud.ProviderClient
		provider, err = s.authenticateOnce(ctx, authOptions)
		if err == nil {
			s.provider = provider
			slog.Info("keystone: authenticated", "project", s.config.OSProjectName)
			return nil
		}
		if !isTransient(err) {
			break
		}
		slog.Warn("keystone: authentication failed, retrying", "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jobloop.DefaultJitter(time.Second)):
		}
	}
	return fmt.Errorf("keystone: failed to authenticate: %w", err)
}

func (s *session) authenticateOnce(ctx context.Context, authOptions gophercloud.AuthOptions) (*gophercloud.ProviderClient, error) {
	provider, err := openstack.NewClient(authOptions.IdentityEndpoint)
	if err != nil {
		return nil, err
	}
	if s.httpClient != nil {
		provider.HTTPClient = *s.httpClient
	}
	if err := openstack.Authenticate(ctx, provider, authOptions); err != nil {
		return nil, err
	}
	return provider, nil
}

// Only errors without a keystone response are worth retrying.
func isTransient(err error) bool {
	var unexpected gophercloud.ErrUnexpectedResponseCode
	return !errors.As(err, &unexpected)
}

func (s *session) ProviderClient() *gophercloud.ProviderClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

func (s *session) Endpoint(serviceType string) (string, error) {
	provider := s.ProviderClient()
	if provider == nil {
		return "", ErrNotAuthenticated
	}
	availability := gophercloud.Availability(s.config.Availability)
	if availability == "" {
		availability = DefaultAvailability
	}
	return provider.EndpointLocator(gophercloud.EndpointOpts{
		Type:         serviceType,
		Availability: availability,
	})
}
