package logging

import (
	"log/slog"
	"path/filepath"

	"github.com/jhkim09/insuuniverse/internal/config"
)

// NewFromConfig creates a logger using application config defaults.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", OutputPaths: []string{"stdout"}})
	}

	outputPaths := []string{"stdout"}
	if cfg.Logging.Dir != "" {
		outputPaths = append(outputPaths, filepath.Join(cfg.Logging.Dir, "insuuniverse.log"))
	}

	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputPaths,
	})
}
