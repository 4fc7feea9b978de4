package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhkim09/insuuniverse/internal/config"
)

const userAgent = "insuuniverse-collector/1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyRunStarted(ctx context.Context, customerName string) error
	NotifyRunCompleted(ctx context.Context, customerName string, records, failedCalls int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, customerName string, runErr error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, customerName string) error {
	customerName = strings.TrimSpace(customerName)
	data := payload{
		title:   "Insuuniverse - Collection Started",
		message: fmt.Sprintf("Started collecting records for %s", customerName),
		tags:    []string{"insuuniverse", "collection", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, customerName string, records, failedCalls int, duration time.Duration) error {
	customerName = strings.TrimSpace(customerName)
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if failedCalls == 0 {
		title = "Insuuniverse - Collection Complete"
		message = fmt.Sprintf("Collected %d records for %s in %s", records, customerName, duration)
	} else {
		title = "Insuuniverse - Collection Complete (partial)"
		message = fmt.Sprintf("Collected %d records for %s in %s, %d endpoint calls failed",
			records, customerName, duration, failedCalls)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"insuuniverse", "collection", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, customerName string, runErr error) error {
	customerName = strings.TrimSpace(customerName)
	reason := "unknown"
	if runErr != nil {
		reason = strings.TrimSpace(runErr.Error())
	}
	data := payload{
		title:    "Insuuniverse - Collection Failed",
		message:  fmt.Sprintf("Collection for %s failed: %s", customerName, reason),
		tags:     []string{"insuuniverse", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Insuuniverse - Test",
		message:  "Notification system test",
		tags:     []string{"insuuniverse", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error              { return nil }
