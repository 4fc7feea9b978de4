package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Portal contains connection settings for the analysis portal.
type Portal struct {
	BaseURL        string `toml:"base_url"`
	APIBaseURL     string `toml:"api_base_url"`
	LoginID        string `toml:"login_id"`
	Password       string `toml:"password"`
	AcceptLanguage string `toml:"accept_language"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Collector contains fetch pacing and pagination settings.
type Collector struct {
	PageSize    int  `toml:"page_size"`
	MaxPages    int  `toml:"max_pages"`
	CallDelayMS int  `toml:"call_delay_ms"`
	SearchYear  int  `toml:"search_year"`
	KeepCallLog bool `toml:"keep_call_log"`
}

// JobStore contains job tracking persistence settings.
type JobStore struct {
	Path             string `toml:"path"`
	RetentionMinutes int    `toml:"retention_minutes"`
}

// Webhook contains settings for the workflow-automation webhook sink.
type Webhook struct {
	URL            string `toml:"url"`
	RequestTimeout int    `toml:"request_timeout"`
	RetryAttempts  int    `toml:"retry_attempts"`
	RetryDelayMS   int    `toml:"retry_delay_ms"`
}

// Docstore contains settings for the document-database sink.
type Docstore struct {
	Enabled           bool   `toml:"enabled"`
	BaseURL           string `toml:"base_url"`
	APIKey            string `toml:"api_key"`
	APIVersion        string `toml:"api_version"`
	MasterDatabaseID  string `toml:"master_database_id"`
	RecordsDatabaseID string `toml:"records_database_id"`
	RequestTimeout    int    `toml:"request_timeout"`
	RetryAttempts     int    `toml:"retry_attempts"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for the collector.
//
// Configuration sections by subsystem:
//   - Portal: portal origins, credentials, request timeout
//   - Collector: page size, page cap, inter-call delay, lookback window
//   - JobStore: SQLite path and retention for job tracking
//   - Webhook: flattened-payload sink delivery settings
//   - Docstore: document-database sink settings
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and directory
type Config struct {
	Portal        Portal        `toml:"portal"`
	Collector     Collector     `toml:"collector"`
	JobStore      JobStore      `toml:"jobstore"`
	Webhook       Webhook       `toml:"webhook"`
	Docstore      Docstore      `toml:"docstore"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/insuuniverse/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and environment fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("insuuniverse.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the collector writes to.
func (c *Config) EnsureDirectories() error {
	if dir := strings.TrimSpace(c.Logging.Dir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if path := strings.TrimSpace(c.JobStore.Path); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", filepath.Dir(path), err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
