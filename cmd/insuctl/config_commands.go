package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhkim09/insuuniverse/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage collector configuration",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a starter configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveInitTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				if _, statErr := os.Stat(target); statErr == nil {
					return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
				} else if !os.IsNotExist(statErr) {
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write starter config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Starter configuration written to %s\n", target)
			fmt.Fprintln(out, "Fill in [portal] login_id and password before running 'insuctl collect'.")
			fmt.Fprintln(out, "Secrets can also come from INSUNIVERSE_LOGIN_ID, INSUNIVERSE_PASSWORD,")
			fmt.Fprintln(out, "MAKE_WEBHOOK_URL, and NOTION_API_KEY.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

func resolveInitTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		target, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return target, nil
	}
	target, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and report which sinks are active",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path:   %s\n", path)
			if !exists {
				fmt.Fprintln(out, "No config file found; defaults and environment variables are in effect")
			}
			fmt.Fprintf(out, "Portal:        %s\n", cfg.Portal.APIBaseURL)
			fmt.Fprintf(out, "Webhook sink:  %s\n", enabledWhen(cfg.Webhook.URL != ""))
			fmt.Fprintf(out, "Docstore sink: %s\n", enabledWhen(cfg.Docstore.Enabled))
			fmt.Fprintf(out, "Notifications: %s\n", enabledWhen(cfg.Notifications.NtfyTopic != ""))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func enabledWhen(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
