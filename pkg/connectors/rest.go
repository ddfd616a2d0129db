// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

// Package connectors provides declarative access to named external
// REST data sources.
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AuthType defines authentication types.
type AuthType int

const (
	AuthNone AuthType = iota
	AuthAPIKey
	AuthBearer
)

// AuthConfig defines how requests are authenticated.
type AuthConfig struct {
	Type   AuthType
	APIKey string
	Header string // header name for API key
	Token  string // bearer token
}

// Source is one named REST data source.
type Source struct {
	BaseURL     string `json:"base_url"`
	Description string `json:"description"`
}

// FetchResult is the outcome of one fetch. Transport and decode
// failures are reported in Error rather than as a Go error, so results
// can flow into prompts unchanged.
type FetchResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RESTConnector fetches JSON from a registry of named sources.
type RESTConnector struct {
	sources map[string]Source
	order   []string
	auth    AuthConfig
	client  *http.Client
}

// Option configures the RESTConnector.
type Option func(*RESTConnector)

// WithSource registers a named source.
func WithSource(name, baseURL, description string) Option {
	return func(c *RESTConnector) {
		if _, exists := c.sources[name]; !exists {
			c.order = append(c.order, name)
		}
		c.sources[name] = Source{BaseURL: baseURL, Description: description}
	}
}

// WithAPIKey sets API key authentication on the given header.
func WithAPIKey(key, header string) Option {
	return func(c *RESTConnector) {
		c.auth = AuthConfig{Type: AuthAPIKey, APIKey: key, Header: header}
	}
}

// WithBearerToken sets Bearer token authentication.
func WithBearerToken(token string) Option {
	return func(c *RESTConnector) {
		c.auth = AuthConfig{Type: AuthBearer, Token: token}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *RESTConnector) {
		c.client = client
	}
}

// NewREST creates a connector. Without WithSource options the source
// registry is empty.
func NewREST(opts ...Option) *RESTConnector {
	c := &RESTConnector{
		sources: make(map[string]Source),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sources returns the registered source names in registration order.
func (c *RESTConnector) Sources() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Source returns a registered source definition.
func (c *RESTConnector) Source(name string) (Source, bool) {
	s, ok := c.sources[name]
	return s, ok
}

// Fetch GETs JSON from a named source. The endpoint is joined to the
// source base URL; params become the query string.
func (c *RESTConnector) Fetch(ctx context.Context, source, endpoint string, params map[string]string) FetchResult {
	src, ok := c.sources[source]
	if !ok {
		return FetchResult{Error: fmt.Sprintf("unknown source: %s", source)}
	}

	fullURL := strings.TrimRight(src.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		fullURL += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return FetchResult{Error: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	switch c.auth.Type {
	case AuthAPIKey:
		req.Header.Set(c.auth.Header, c.auth.APIKey)
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+c.auth.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return FetchResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{StatusCode: resp.StatusCode, Error: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FetchResult{
			StatusCode: resp.StatusCode,
			Error:      fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return FetchResult{StatusCode: resp.StatusCode, Error: fmt.Sprintf("invalid JSON response: %v", err)}
	}

	return FetchResult{Success: true, StatusCode: resp.StatusCode, Data: data}
}
