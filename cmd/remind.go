package cmd

import (
	"context"
	"fmt"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/config"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/notify"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/store"

	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send renewal reminders that are due today",
	Args:  cobra.NoArgs,
	RunE:  runRemind,
}

var (
	remindDryRun bool
	remindTest   bool
)

func init() {
	remindCmd.Flags().BoolVar(&remindDryRun, "dry-run", false, "Print reminders instead of sending them")
	remindCmd.Flags().BoolVar(&remindTest, "test", false, "Send a test message and exit")
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	n, err := reminderNotifier(ctx, st)
	if err != nil {
		return err
	}

	if remindTest {
		if n == nil {
			return notify.ErrNotConfigured
		}
		if err := n.Send(ctx, notify.TestMessage); err != nil {
			return err
		}
		fmt.Println("  Test message sent.")
		return nil
	}

	result, err := pipeline.Load(ctx, st, clock())
	if err != nil {
		return err
	}
	today := newAnalyzer().Today()

	if remindDryRun {
		due := notify.DueReminders(result.Subscriptions, today, appCfg.Reminders.DaysBefore)
		if len(due) == 0 {
			fmt.Println("  No reminders due today.")
			return nil
		}
		for _, r := range due {
			fmt.Printf("  %s\n\n", notify.FormatReminder(r))
		}
		return nil
	}

	if n == nil {
		return fmt.Errorf("%w: run `subs setup` or set %s and %s", notify.ErrNotConfigured,
			notify.SettingTelegramToken, notify.SettingTelegramChatID)
	}

	res, err := notify.Check(ctx, result.Subscriptions, today, appCfg.Reminders.DaysBefore, n, st)
	fmt.Printf("  Checked %d, sent %d, already sent %d, failed %d\n",
		res.Checked, len(res.Sent), res.Skipped, res.Failed)
	return err
}

// reminderNotifier resolves Telegram credentials from stored settings first,
// then the environment and config file. It returns nil when none are set.
func reminderNotifier(ctx context.Context, st *store.Store) (notify.Notifier, error) {
	settings, err := st.Settings(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(settings))
	for _, s := range settings {
		m[s.Key] = s.Value
	}
	return notify.FromSettings(m, config.TelegramToken(appCfg), appCfg.Telegram.ChatID), nil
}
