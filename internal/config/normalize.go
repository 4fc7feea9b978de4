package config

import (
	"os"
	"strings"
)

// normalize applies environment fallbacks, trims values, and expands paths.
func (c *Config) normalize() error {
	c.Portal.BaseURL = strings.TrimRight(strings.TrimSpace(c.Portal.BaseURL), "/")
	c.Portal.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Portal.APIBaseURL), "/")
	c.Portal.LoginID = strings.TrimSpace(c.Portal.LoginID)
	c.Portal.Password = strings.TrimSpace(c.Portal.Password)
	c.Portal.AcceptLanguage = strings.TrimSpace(c.Portal.AcceptLanguage)

	if c.Portal.LoginID == "" {
		c.Portal.LoginID = strings.TrimSpace(os.Getenv("INSUNIVERSE_LOGIN_ID"))
	}
	if c.Portal.Password == "" {
		c.Portal.Password = strings.TrimSpace(os.Getenv("INSUNIVERSE_PASSWORD"))
	}

	c.Webhook.URL = strings.TrimSpace(c.Webhook.URL)
	if c.Webhook.URL == "" {
		c.Webhook.URL = strings.TrimSpace(os.Getenv("MAKE_WEBHOOK_URL"))
	}

	c.Docstore.APIKey = strings.TrimSpace(c.Docstore.APIKey)
	if c.Docstore.APIKey == "" {
		c.Docstore.APIKey = strings.TrimSpace(os.Getenv("NOTION_API_KEY"))
	}
	c.Docstore.BaseURL = strings.TrimRight(strings.TrimSpace(c.Docstore.BaseURL), "/")

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	if path := strings.TrimSpace(c.JobStore.Path); path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return err
		}
		c.JobStore.Path = expanded
	} else {
		c.JobStore.Path = ""
	}

	if dir := strings.TrimSpace(c.Logging.Dir); dir != "" {
		expanded, err := expandPath(dir)
		if err != nil {
			return err
		}
		c.Logging.Dir = expanded
	} else {
		c.Logging.Dir = ""
	}

	return nil
}
