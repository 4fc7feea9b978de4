// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/jhkim09/insuuniverse/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with credentials and unique temp
// directories per test. It defaults common fields and applies any provided
// options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Portal.LoginID = "test-agent"
	cfg.Portal.Password = "test-secret"
	cfg.Collector.CallDelayMS = 0
	cfg.JobStore.Path = filepath.Join(base, "jobs.db")
	cfg.Logging.Dir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithPortalBaseURLs points both portal origins at a test server.
func WithPortalBaseURLs(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Portal.BaseURL = url
		cfg.Portal.APIBaseURL = url
	}
}

// WithWebhookURL enables the webhook sink against a test server.
func WithWebhookURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Webhook.URL = url
		cfg.Webhook.RetryDelayMS = 0
	}
}
