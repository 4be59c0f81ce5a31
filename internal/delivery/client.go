// Package delivery pushes decoded reports to the dashboard backend's webhook
// endpoint.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/KomaiX512/insightdeck/internal/secdoc"
)

// RetryableError marks a transient delivery failure (throttling, upstream
// 5xx, network) that is worth retrying with backoff.
type RetryableError struct {
	Status int
	Err    error
}

func (e *RetryableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("retryable delivery failure: status %d", e.Status)
	}
	return fmt.Sprintf("retryable delivery failure: %v", e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// Report is one decoded payload as pushed to the webhook.
type Report struct {
	JobID       string           `json:"job_id"`
	Name        string           `json:"name"`
	PayloadHash string           `json:"payload_hash"`
	Sections    []secdoc.Section `json:"sections"`
	ClassPrefix string           `json:"class_prefix,omitempty"`
	DecodedAt   time.Time        `json:"decoded_at"`
}

// Client posts decoded reports over HTTP with bearer auth.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PushReport delivers a single report. Transport errors and 429/5xx statuses
// come back as *RetryableError; other non-2xx statuses are permanent.
func (c *Client) PushReport(ctx context.Context, report Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hooks/decoded-reports", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &RetryableError{Status: resp.StatusCode}
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push report %s: status %d: %s", report.Name, resp.StatusCode, string(respBody))
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
