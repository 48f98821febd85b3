package cmd

import (
	"fmt"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/notify"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "List settings stored in the database",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Create or replace a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// secretSettings are masked when listed.
var secretSettings = map[string]bool{
	notify.SettingTelegramToken: true,
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	settings, err := st.Settings(cmd.Context())
	if err != nil {
		return err
	}
	if len(settings) == 0 {
		fmt.Println("\n  No settings stored.")
		return nil
	}

	rows := make([][]string, 0, len(settings))
	for _, s := range settings {
		v := s.Value
		if secretSettings[s.Key] {
			v = maskSecret(v)
		}
		rows = append(rows, []string{s.Key, v})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"Key", "Value"},
		Rows:      rows,
		LeftAlign: []int{1},
	}))
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	v, err := st.GetSetting(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("setting %q: %w", args[0], err)
	}
	fmt.Println(v)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.PutSetting(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("  Saved %s\n", args[0])
	return nil
}

func maskSecret(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
