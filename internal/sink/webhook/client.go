package webhook

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

// Result reports the outcome of one delivery, including how many attempts
// were spent. A failed delivery is data, not a panic; callers decide what
// to do with it.
type Result struct {
	Delivered  bool
	Attempts   int
	StatusCode int
	Err        error
}

// Client posts payloads to the configured webhook.
type Client struct {
	url        string
	attempts   int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *slog.Logger
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

// New creates a webhook client. A missing URL is an error; callers that
// have no webhook configured should not construct a client at all.
func New(cfg config.Webhook, logger *slog.Logger, opts ...Option) (*Client, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("webhook url required")
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
		url:        url,
		attempts:   attempts,
		retryDelay: time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "webhook"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Deliver posts the payload, retrying up to the configured attempt budget
// with a fixed delay between attempts.
func (c *Client) Deliver(ctx context.Context, payload Payload) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Err: fmt.Errorf("encode payload: %w", err)}
	}

	result := Result{}
	for attempt := 1; attempt <= c.attempts; attempt++ {
		result.Attempts = attempt

		status, err := c.post(ctx, body)
		result.StatusCode = status
		if err == nil {
			result.Delivered = true
			result.Err = nil
			c.logger.Info("payload delivered",
				logging.Int("attempt", attempt),
				logging.Int("status", status))
			return result
		}
		result.Err = err
		c.logger.Warn("delivery attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("attempts_allowed", c.attempts),
			logging.Error(err))

		if attempt < c.attempts {
			if waitErr := c.wait(ctx); waitErr != nil {
				result.Err = waitErr
				return result
			}
		}
	}
	return result
}

func (c *Client) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return 0, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("webhook returned %d (latency=%v)", resp.StatusCode, latency)
	}
	return resp.StatusCode, nil
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
