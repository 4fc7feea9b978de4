package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jhkim09/insuuniverse/internal/config"
	"github.com/jhkim09/insuuniverse/internal/logging"
)

// Client talks to the document-database HTTP API.
type Client struct {
	baseURL           string
	apiKey            string
	apiVersion        string
	masterDatabaseID  string
	recordsDatabaseID string
	attempts          int
	retryDelay        time.Duration
	httpClient        *http.Client
	logger            *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryDelay overrides the pause between retry attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

// New creates a document-database client.
func New(cfg config.Docstore, logger *slog.Logger, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("docstore api key required")
	}
	if strings.TrimSpace(cfg.MasterDatabaseID) == "" || strings.TrimSpace(cfg.RecordsDatabaseID) == "" {
		return nil, errors.New("docstore database ids required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("docstore base url required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		apiKey:            apiKey,
		apiVersion:        strings.TrimSpace(cfg.APIVersion),
		masterDatabaseID:  strings.TrimSpace(cfg.MasterDatabaseID),
		recordsDatabaseID: strings.TrimSpace(cfg.RecordsDatabaseID),
		attempts:          attempts,
		retryDelay:        time.Second,
		httpClient:        &http.Client{Timeout: timeout},
		logger:            logging.NewComponentLogger(logger, "docstore"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// do issues one API request with the retry budget, decoding the response
// into out when it is non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = encoded
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		lastErr = c.doOnce(ctx, method, path, body, out)
		if lastErr == nil {
			return nil
		}
		c.logger.Warn("docstore request failed",
			logging.String("path", path),
			logging.Int("attempt", attempt),
			logging.Error(lastErr))
		if attempt < c.attempts {
			if err := c.wait(ctx); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.apiVersion != "" {
		req.Header.Set("Notion-Version", c.apiVersion)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("docstore returned %d (latency=%v): %s", resp.StatusCode, latency, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.retryDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
