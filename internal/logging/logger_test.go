package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jhkim09/insuuniverse/internal/logging"
)

func TestNewConsoleWritesKeyValuePairs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "collector.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("fetch complete", logging.String("category", "ANS004"), logging.Int("items", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO fetch complete") {
		t.Fatalf("expected level and message in output, got %q", line)
	}
	if !strings.Contains(line, "category=ANS004") || !strings.Contains(line, "items=3") {
		t.Fatalf("expected key=value attributes, got %q", line)
	}
}

func TestNewConsolePrefixesComponent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "collector.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "executor").Debug("starting run")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "executor: starting run") {
		t.Fatalf("expected component prefix, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "collector.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "warn",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("kept")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "suppressed") {
		t.Fatalf("expected info record to be filtered, got %q", content)
	}
	if !strings.Contains(string(content), "kept") {
		t.Fatalf("expected warn record to be written, got %q", content)
	}
}
