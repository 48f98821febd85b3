// Package cmd implements the subs CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Database:    %s\n", dbPath())
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Window months:    %d\n", cfg.General.WindowMonths)
	fmt.Printf("    Upcoming days:    %d\n", cfg.General.UpcomingDays)
	fmt.Printf("    Default currency: %s\n", cfg.General.DefaultCurrency)
	fmt.Println()

	fmt.Println("  [Reminders]")
	fmt.Printf("    Enabled:     %v\n", cfg.Reminders.Enabled)
	fmt.Printf("    Days before: %s\n", joinInts(cfg.Reminders.DaysBefore))
	fmt.Printf("    Check hour:  %02d:00\n", cfg.Reminders.CheckHour)
	fmt.Println()

	fmt.Println("  [Telegram]")
	if token := config.TelegramToken(cfg); token != "" {
		fmt.Printf("    Bot token: %s\n", maskSecret(token))
	} else {
		fmt.Println("    Bot token: not configured")
	}
	if cfg.Telegram.ChatID != "" {
		fmt.Printf("    Chat ID:   %s\n", cfg.Telegram.ChatID)
	}
	fmt.Println()

	fmt.Println("  [FX]")
	fmt.Printf("    Cache TTL: %s\n", cfg.FX.TTL)
	for _, ep := range cfg.FX.Endpoints {
		fmt.Printf("    Endpoint:  %s\n", ep)
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Poll interval: %s\n", cfg.Server.PollInterval)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `subs setup` to reconfigure.")
	return nil
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
