package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"songscout/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set catalog.client_id/client_secret (or SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET) before running Songscout.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "paths.data_dir        = %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "paths.log_dir         = %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "catalog.client_id     = %s\n", redact(cfg.Catalog.ClientID))
			fmt.Fprintf(out, "catalog.market        = %s\n", cfg.Catalog.Market)
			fmt.Fprintf(out, "catalog.batch_size    = %d\n", cfg.Catalog.BatchSize)
			fmt.Fprintf(out, "credits.enabled       = %s\n", yesNo(cfg.Credits.Enabled))
			fmt.Fprintf(out, "credits.base_url      = %s\n", cfg.Credits.BaseURL)
			fmt.Fprintf(out, "musicdb.base_url      = %s\n", cfg.MusicDB.BaseURL)
			fmt.Fprintf(out, "chart.api_key         = %s\n", redact(cfg.Chart.APIKey))
			fmt.Fprintf(out, "chart.staleness_days  = %d\n", cfg.Chart.StalenessDays)
			fmt.Fprintf(out, "registry.client_id    = %s\n", redact(cfg.Registry.ClientID))
			fmt.Fprintf(out, "registry.fallback     = %s\n", cfg.Registry.FallbackPolicy)
			fmt.Fprintf(out, "vault.token_path      = %s\n", cfg.Vault.TokenPath)
			fmt.Fprintf(out, "scheduler.enabled     = %s\n", yesNo(cfg.Scheduler.Enabled))
			fmt.Fprintf(out, "scheduler.playlist    = %s\n", cfg.Scheduler.PlaylistCron)
			fmt.Fprintf(out, "scheduler.retry       = %s\n", cfg.Scheduler.RetryCron)
			fmt.Fprintf(out, "scheduler.snapshot    = %s\n", cfg.Scheduler.SnapshotCron)
			fmt.Fprintf(out, "workflow.poll_seconds = %d\n", cfg.Workflow.QueuePollInterval)
			fmt.Fprintf(out, "workflow.concurrency  = %d\n", cfg.Workflow.EnrichConcurrency)
			fmt.Fprintf(out, "logging.format        = %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "logging.level         = %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "notifications.topic   = %s\n", cfg.Notifications.NtfyTopic)
			return nil
		},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}
}

func redact(value string) string {
	if value == "" {
		return "(unset)"
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
