package cmd

import (
	"fmt"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/config"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 30, "Auto-refresh interval in seconds (minimum 10)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	app := tui.NewApp(st, tui.Options{
		Config:          appCfg,
		Analysis:        analysisOptions(),
		FX:              newFXClient(),
		Now:             clock(),
		NeedSetup:       !config.Exists(),
		SaveConfig:      config.Save,
		RefreshInterval: time.Duration(tuiRefresh) * time.Second,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
