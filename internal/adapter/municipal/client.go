// Package municipal fetches the authoritative park status from the
// municipal feed. The status code is owned by the municipality and passed
// through opaquely; this client only does the HTTP plumbing.
package municipal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	maxAttempts    = 3
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

// Status is the authoritative park status as reported by the municipality.
// Code is an integer 1..6; 5 and 6 mean officially closed. The free-text
// fields feed the presentation layer untouched.
type Status struct {
	Code      int    `json:"status"`
	Incident  string `json:"incident,omitempty"`
	UpdatedAt string `json:"updated,omitempty"`
}

// Client fetches the municipal status feed.
type Client struct {
	statusURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a municipal status client.
func NewClient(statusURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		statusURL: statusURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchStatus retrieves the current authoritative status, retrying
// transient failures with doubling backoff.
func (c *Client) FetchStatus(ctx context.Context) (Status, error) {
	var lastErr error

	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := c.fetchOnce(ctx)
		if err == nil {
			return status, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return Status{}, fmt.Errorf("fetch status: %w", err)
		}
		c.logger.Warn("status fetch attempt failed", "attempt", attempt, "error", err)

		if attempt < maxAttempts {
			if !sleepWithContext(ctx, backoff) {
				break
			}
			backoff = nextBackoff(backoff)
		}
	}

	return Status{}, fmt.Errorf("fetch status after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context) (Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return Status{}, fmt.Errorf("create status request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Status{}, fmt.Errorf("status endpoint: status %d: %s", resp.StatusCode, body)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return Status{}, fmt.Errorf("decode status response: %w", err)
	}

	return status, nil
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
