// Package aemet fetches the weather agency's CAP warning payload through
// its two-step open-data API: a metadata request that returns the location
// of the actual data, then a download of that data.
package aemet

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

// Client fetches raw warning payloads for a warning area.
type Client struct {
	apiKey     string
	areaURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a warning-feed client for the configured area endpoint.
func NewClient(apiKey, areaURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		areaURL: areaURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// envelope is the agency's "where is my data" response. A non-200 estado
// means the lookup failed even when the HTTP status was 200.
type envelope struct {
	Estado      int    `json:"estado"`
	Datos       string `json:"datos"`
	Descripcion string `json:"descripcion"`
}

// FetchWarnings retrieves the raw warning payload bytes and their declared
// content type. Retries with doubling backoff; a malformed or non-success
// metadata response surfaces as a fetch failure so the parsing stages never
// see garbage.
func (c *Client) FetchWarnings(ctx context.Context) ([]byte, string, error) {
	var lastErr error

	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		payload, contentType, err := c.fetchOnce(ctx)
		if err == nil {
			return payload, contentType, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, "", fmt.Errorf("fetch warnings: %w", err)
		}
		c.logger.Warn("warning fetch attempt failed", "attempt", attempt, "error", err)

		if attempt < maxAttempts {
			if !sleepWithContext(ctx, backoff) {
				break
			}
			backoff = nextBackoff(backoff)
		}
	}

	return nil, "", fmt.Errorf("fetch warnings after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context) ([]byte, string, error) {
	env, err := c.fetchEnvelope(ctx)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.Datos, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create data request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("data request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("data endpoint: status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read data body: %w", err)
	}

	return payload, resp.Header.Get("Content-Type"), nil
}

func (c *Client) fetchEnvelope(ctx context.Context) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.areaURL, nil)
	if err != nil {
		return envelope{}, fmt.Errorf("create metadata request: %w", err)
	}
	req.Header.Set("api_key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return envelope{}, fmt.Errorf("metadata endpoint: status %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("decode metadata response: %w", err)
	}
	if env.Estado != http.StatusOK {
		return envelope{}, fmt.Errorf("metadata lookup failed: estado %d: %s", env.Estado, env.Descripcion)
	}
	if env.Datos == "" {
		return envelope{}, fmt.Errorf("metadata lookup returned no data URL")
	}

	return env, nil
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
