// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package openstack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gophercloud/gophercloud/v2"
)

// Authenticated client for a single OpenStack service.
type OpenstackClient struct {
	serviceClient       *gophercloud.ServiceClient
	apiVersionHeaderKey string
	apiVersionHeader    string
}

// The gophercloud service client, e.g. to use gophercloud's resource packages.
func (c *OpenstackClient) ServiceClient() *gophercloud.ServiceClient {
	return c.serviceClient
}

// List all items of a paginated resource into the result.
//
// OpenStack lists return the items under the resource key and the link to
// the next page under "<resource>_links" with rel=next. All pages are
// fetched and concatenated before decoding into the result.
func (c *OpenstackClient) List(ctx context.Context, path string, query url.Values, resource string, result any) error {
	// Generate url for the request
	baseURL, err := url.Parse(c.serviceClient.Endpoint)
	if err != nil {
		return err
	}
	baseURL.Path = strings.TrimSuffix(baseURL.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	baseURL.RawQuery = query.Encode()

	nextURL := baseURL.String()
	var allItemsRaw []json.RawMessage
	for nextURL != "" {
		items, next, err := c.listPage(ctx, nextURL, resource)
		if err != nil {
			return err
		}
		allItemsRaw = append(allItemsRaw, items...)
		nextURL = next
	}
	if allItemsRaw == nil {
		allItemsRaw = []json.RawMessage{}
	}
	allItemsJSON, err := json.Marshal(allItemsRaw)
	if err != nil {
		return err
	}
	return json.Unmarshal(allItemsJSON, result)
}

// Fetch a single page and return its items and the link to the next page.
func (c *OpenstackClient) listPage(ctx context.Context, pageURL, resource string) (items []json.RawMessage, next string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("X-Auth-Token", c.serviceClient.Token())
	if c.apiVersionHeaderKey != "" {
		req.Header.Set(c.apiVersionHeaderKey, c.apiVersionHeader)
	}
	resp, err := c.serviceClient.HTTPClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Parse response as generic map
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, "", err
	}
	itemsData, ok := raw[resource]
	if !ok {
		return nil, "", fmt.Errorf("missing %q in response", resource)
	}
	if err := json.Unmarshal(itemsData, &items); err != nil {
		return nil, "", err
	}

	// Extract next link
	var links []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	}
	if linksData, ok := raw[resource+"_links"]; ok {
		if err := json.Unmarshal(linksData, &links); err != nil {
			return nil, "", err
		}
	}
	for _, link := range links {
		if link.Rel == "next" {
			return items, link.Href, nil
		}
	}
	return items, "", nil
}
