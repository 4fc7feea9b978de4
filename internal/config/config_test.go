package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jhkim09/insuuniverse/internal/config"
)

func validConfig() config.Config {
	cfg := config.Default()
	cfg.Portal.LoginID = "tester"
	cfg.Portal.Password = "secret"
	cfg.JobStore.Path = ""
	cfg.Logging.Dir = ""
	return cfg
}

func TestDefaultValidatesWithCredentials(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Portal.LoginID = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing login id")
	}
	if !strings.Contains(err.Error(), "portal.login_id") {
		t.Fatalf("expected login id error, got %v", err)
	}
}

func TestValidateRejectsBadLocale(t *testing.T) {
	cfg := validConfig()
	cfg.Portal.AcceptLanguage = "not a locale!"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid accept_language")
	}
}

func TestValidateCanonicalizesLocale(t *testing.T) {
	cfg := validConfig()
	cfg.Portal.AcceptLanguage = "ko-kr"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Portal.AcceptLanguage != "ko-KR" {
		t.Fatalf("expected canonical tag ko-KR, got %q", cfg.Portal.AcceptLanguage)
	}
}

func TestValidateRejectsBadPagination(t *testing.T) {
	cfg := validConfig()
	cfg.Collector.MaxPages = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for max_pages of zero")
	}
}

func TestValidateDocstoreRequiresDatabases(t *testing.T) {
	cfg := validConfig()
	cfg.Docstore.Enabled = true
	cfg.Docstore.APIKey = "secret_abc"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database ids")
	}
}

func TestLoadReadsFileAndAppliesEnvFallbacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[portal]
login_id = "tester"

[collector]
page_size = 20

[jobstore]
path = ""

[logging]
dir = ""
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("INSUNIVERSE_PASSWORD", "from-env")
	t.Setenv("MAKE_WEBHOOK_URL", "https://hook.example.com/abc")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Portal.Password != "from-env" {
		t.Fatalf("expected password from environment, got %q", cfg.Portal.Password)
	}
	if cfg.Webhook.URL != "https://hook.example.com/abc" {
		t.Fatalf("expected webhook url from environment, got %q", cfg.Webhook.URL)
	}
	if cfg.Collector.PageSize != 20 {
		t.Fatalf("expected page_size override, got %d", cfg.Collector.PageSize)
	}
	if cfg.Collector.MaxPages != 3 {
		t.Fatalf("expected default max_pages, got %d", cfg.Collector.MaxPages)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(content), "[portal]") {
		t.Fatalf("expected portal section in sample, got %q", content)
	}
}
