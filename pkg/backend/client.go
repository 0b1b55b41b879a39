// Package backend is the HTTP client for the marketing-automation platform
// API the gateway fronts. Requests are single attempt with no retries; every
// failure is surfaced to the caller.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Default client timeouts.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultHealthTimeout  = 5 * time.Second
)

// Client wraps the platform backend API.
type Client struct {
	baseURL       string
	httpClient    *resty.Client
	healthTimeout time.Duration
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, requestTimeout, healthTimeout time.Duration) *Client {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if healthTimeout <= 0 {
		healthTimeout = DefaultHealthTimeout
	}

	httpClient := resty.New()
	httpClient.SetTimeout(requestTimeout)
	httpClient.SetHeader("Content-Type", "application/json")

	return &Client{
		baseURL:       baseURL,
		httpClient:    httpClient,
		healthTimeout: healthTimeout,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChatRequest is the payload forwarded to the backend chat endpoint.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"userId,omitempty"`
}

// Reply carries an upstream status code and body unchanged.
type Reply struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (r *Reply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Chat forwards a chat request to the backend.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*Reply, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.baseURL + "/api/chat")

	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	return &Reply{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// EventAnalytics queries event analytics for an organization.
func (c *Client) EventAnalytics(ctx context.Context, organizationID, timeframe string) (*Reply, error) {
	return c.get(ctx, "/api/analytics/events", map[string]string{
		"organizationId": organizationID,
		"timeframe":      timeframe,
	})
}

// WorkflowStatistics queries workflow execution statistics. An empty
// organization id queries the global scope.
func (c *Client) WorkflowStatistics(ctx context.Context, organizationID string) (*Reply, error) {
	params := map[string]string{}
	if organizationID != "" {
		params["organizationId"] = organizationID
	}
	return c.get(ctx, "/api/analytics/workflows", params)
}

// ClientAnalytics queries the cross-organization client dashboard data.
func (c *Client) ClientAnalytics(ctx context.Context) (*Reply, error) {
	return c.get(ctx, "/api/analytics/clients", nil)
}

// StuckContacts queries contacts whose workflow execution has stalled.
func (c *Client) StuckContacts(ctx context.Context, organizationID string) (*Reply, error) {
	return c.get(ctx, "/api/contacts/stuck", map[string]string{
		"organizationId": organizationID,
	})
}

// AutomationLogs queries automation pipeline log entries.
func (c *Client) AutomationLogs(ctx context.Context, organizationID string, limit int) (*Reply, error) {
	return c.get(ctx, "/api/automation/logs", map[string]string{
		"organizationId": organizationID,
		"limit":          strconv.Itoa(limit),
	})
}

// Ping checks backend reachability with an explicit short timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(c.baseURL + "/health")

	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("backend health check failed with status: %d", resp.StatusCode())
	}

	return nil
}

// get performs a passthrough GET and relays status and body unchanged.
func (c *Client) get(ctx context.Context, path string, params map[string]string) (*Reply, error) {
	req := c.httpClient.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}

	return &Reply{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}
