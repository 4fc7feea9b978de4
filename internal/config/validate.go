package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePortal(); err != nil {
		return err
	}
	if err := c.validateCollector(); err != nil {
		return err
	}
	if err := c.validateJobStore(); err != nil {
		return err
	}
	if err := c.validateWebhook(); err != nil {
		return err
	}
	if err := c.validateDocstore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePortal() error {
	if c.Portal.BaseURL == "" {
		return errors.New("portal.base_url must be set")
	}
	if c.Portal.APIBaseURL == "" {
		return errors.New("portal.api_base_url must be set")
	}
	for _, value := range []string{c.Portal.BaseURL, c.Portal.APIBaseURL} {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("portal url %q is not a valid absolute URL", value)
		}
	}
	if c.Portal.LoginID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/insuuniverse/config.toml"
		}
		return fmt.Errorf("portal.login_id is required. Set INSUNIVERSE_LOGIN_ID env var or edit %s (create with 'insuctl config init')", defaultPath)
	}
	if c.Portal.Password == "" {
		return errors.New("portal.password is required. Set INSUNIVERSE_PASSWORD env var or edit the config file")
	}
	if lang := c.Portal.AcceptLanguage; lang != "" {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("portal.accept_language %q is not a valid BCP 47 tag: %w", lang, err)
		}
		c.Portal.AcceptLanguage = tag.String()
	}
	if c.Portal.RequestTimeout <= 0 {
		return errors.New("portal.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateCollector() error {
	if c.Collector.PageSize <= 0 {
		return errors.New("collector.page_size must be positive")
	}
	if c.Collector.MaxPages < 1 || c.Collector.MaxPages > 10 {
		return errors.New("collector.max_pages must be between 1 and 10")
	}
	if c.Collector.CallDelayMS < 0 {
		return errors.New("collector.call_delay_ms must not be negative")
	}
	if c.Collector.SearchYear <= 0 {
		return errors.New("collector.search_year must be positive")
	}
	return nil
}

func (c *Config) validateJobStore() error {
	if c.JobStore.RetentionMinutes < 0 {
		return errors.New("jobstore.retention_minutes must not be negative")
	}
	return nil
}

func (c *Config) validateWebhook() error {
	if c.Webhook.URL != "" {
		parsed, err := url.Parse(c.Webhook.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("webhook.url %q is not a valid absolute URL", c.Webhook.URL)
		}
	}
	if c.Webhook.RetryAttempts < 1 {
		return errors.New("webhook.retry_attempts must be at least 1")
	}
	if c.Webhook.RequestTimeout <= 0 {
		return errors.New("webhook.request_timeout must be positive")
	}
	if c.Webhook.RetryDelayMS < 0 {
		return errors.New("webhook.retry_delay_ms must not be negative")
	}
	return nil
}

func (c *Config) validateDocstore() error {
	if !c.Docstore.Enabled {
		return nil
	}
	if c.Docstore.APIKey == "" {
		return errors.New("docstore.api_key is required when docstore.enabled is true. Set NOTION_API_KEY env var or edit the config file")
	}
	if c.Docstore.MasterDatabaseID == "" {
		return errors.New("docstore.master_database_id is required when docstore.enabled is true")
	}
	if c.Docstore.RecordsDatabaseID == "" {
		return errors.New("docstore.records_database_id is required when docstore.enabled is true")
	}
	if c.Docstore.RetryAttempts < 1 {
		return errors.New("docstore.retry_attempts must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (console or json)", c.Logging.Format)
	}
	return nil
}
