package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"songscout/internal/authhealth"
	"songscout/internal/vault"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Scraping session health and cookie management",
	}

	authCmd.AddCommand(newAuthStatusCommand(ctx))
	authCmd.AddCommand(newAuthImportCommand(ctx))

	return authCmd
}

func newAuthStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show scraping auth health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cliLogger()
			if err != nil {
				return err
			}
			monitor, err := authhealth.Load(cfg.AuthStatePath(), logger)
			if err != nil {
				return err
			}

			status := monitor.Status()
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			kind := statusOK
			message := "session healthy"
			switch {
			case !monitor.EverSucceeded():
				kind = statusWarn
				message = "never authenticated; run 'songscout auth import'"
			case !monitor.Healthy():
				kind = statusError
				message = fmt.Sprintf("%d consecutive failures", status.ConsecutiveFailures)
			}
			fmt.Fprintln(out, renderStatusLine("Scraping auth", kind, message, colorize))
			fmt.Fprintln(out, renderStatusLine("Last success", statusInfo, formatTime(status.LastSuccess), colorize))
			fmt.Fprintln(out, renderStatusLine("Last failure", statusInfo, formatTime(status.LastFailure), colorize))
			if status.LastFailureMessage != "" {
				fmt.Fprintln(out, renderStatusLine("Failure detail", statusInfo, status.LastFailureMessage, colorize))
			}
			if status.CookieExpiry != nil {
				fmt.Fprintln(out, renderStatusLine("Cookie expiry", statusInfo, formatTime(status.CookieExpiry), colorize))
			}
			return nil
		},
	}
}

func newAuthImportCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import browser session cookies into the vault",
		Long:  "Reads a JSON array of cookies exported from a logged-in browser session and stores it encrypted in the vault.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			source := strings.TrimSpace(file)
			if source == "" {
				source = cfg.Credits.CookiesPath
			}
			if source == "" {
				return fmt.Errorf("no cookie file given; pass --file or set credits.cookies_path")
			}

			raw, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("read cookie file: %w", err)
			}
			var cookies []vault.Cookie
			if err := json.Unmarshal(raw, &cookies); err != nil {
				return fmt.Errorf("parse cookie file: %w", err)
			}
			if len(cookies) == 0 {
				return fmt.Errorf("cookie file %s contains no cookies", source)
			}

			logger, err := cliLogger()
			if err != nil {
				return err
			}
			cipher := vault.NewCipher(cfg.Vault.Secret, logger)
			manager := vault.NewManager(vault.NewFileTokenStore(cfg.Vault.TokenPath, cipher), nil, logger)
			if err := manager.StoreCookies(cookies); err != nil {
				return fmt.Errorf("store cookies: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cookies into %s\n", len(cookies), cfg.Vault.TokenPath)
			fmt.Fprintln(cmd.OutOrStdout(), "The next credits run validates the session and updates auth health.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Cookie JSON file (defaults to credits.cookies_path)")
	return cmd
}
