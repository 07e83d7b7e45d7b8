// Package client provides an HTTP client for the suggestion webhook.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raphaelgruber/flirtassist/internal/metrics"
	"github.com/raphaelgruber/flirtassist/internal/models"
)

// ErrNoEndpoint is returned when no webhook URL was configured.
var ErrNoEndpoint = errors.New("no suggestion webhook configured")

// Request is the payload posted to the webhook.
type Request struct {
	ImageBase64 string         `json:"imageBase64,omitempty"`
	Text        string         `json:"text,omitempty"`
	Mood        models.Mood    `json:"mood"`
	Thread      *models.Thread `json:"thread,omitempty"`
}

// Response is the webhook's answer.
type Response struct {
	Suggestions []string `json:"suggestions"`
	OCRText     string   `json:"ocrText,omitempty"`
	Title       string   `json:"title,omitempty"`
}

// RequestError reports a failed webhook call. StatusCode is 0 when no
// response was received.
type RequestError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("suggestion request failed: %d %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("suggestion request failed: %v", e.Err)
	default:
		return "suggestion request failed"
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Client posts suggestion requests to a single webhook endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *metrics.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records request timings in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for endpoint. The default http.Client has no
// timeout; callers bound a request through its context.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured webhook URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// RequestSuggestions sends req and decodes the webhook's response.
func (c *Client) RequestSuggestions(ctx context.Context, req Request) (resp *Response, err error) {
	if c.endpoint == "" {
		return nil, ErrNoEndpoint
	}

	start := time.Now()
	defer func() { c.metrics.Since(metrics.OpWebhookRequest, start, err) }()

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &RequestError{StatusCode: httpResp.StatusCode, Body: "unreadable body", Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(httpResp.StatusCode)
		}
		return nil, &RequestError{StatusCode: httpResp.StatusCode, Body: msg}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &RequestError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}
