package cmd

import (
	"fmt"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"

	"github.com/spf13/cobra"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Subscriptions added per month",
	RunE:  runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(result.Subscriptions) == 0 {
		fmt.Println("\n  No subscriptions found.")
		return nil
	}

	a := newAnalyzer()
	entries := a.CreationTimeline(result.Subscriptions)
	if len(entries) == 0 {
		fmt.Printf("\n  Nothing was added in the last %d months.\n", a.Options().Window)
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ADDED PER MONTH  Last %d months", a.Options().Window)))
	fmt.Println()

	printTimeline(entries, reportCurrency())
	return nil
}

// printTimeline renders one bar per month scaled by count.
func printTimeline(entries []model.TimelineEntry, cur string) {
	maxCount, peak := 0, 0
	for i, e := range entries {
		if e.Count > maxCount {
			maxCount = e.Count
			peak = i
		}
	}

	for _, e := range entries {
		fmt.Printf("%s %s  %s\n",
			cli.RenderHorizontalBar(e.Date.String(), float64(e.Count), float64(maxCount), 7, 30),
			cli.FormatNumber(int64(e.Count)),
			cli.RenderMuted(cli.FormatMoney(e.Amount, cur)))
	}

	fmt.Printf("\n  Peak: %s (%s)\n\n",
		entries[peak].Date, cli.FormatCount(entries[peak].Count, "subscription", "subscriptions"))
}
