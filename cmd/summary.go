package cmd

import (
	"fmt"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Subscription count, costs and next renewals",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	if len(result.Subscriptions) == 0 {
		fmt.Println("\n  No subscriptions yet.")
		fmt.Println("  Add one with `subs add` or load a file with `subs import`.")
		return nil
	}

	a := newAnalyzer()
	stats := a.SubscriptionAnalytics(result.Subscriptions)
	cur := reportCurrency()
	today := a.Today()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SUBSCRIPTIONS  as of %s", today)))
	fmt.Println()

	rows := [][]string{
		{"Subscriptions", cli.FormatNumber(int64(stats.TotalSubscriptions))},
		{"Active", cli.FormatNumber(int64(stats.ActiveSubscriptions))},
		{"---"},
		{"Monthly cost", cli.FormatMoney(stats.TotalMonthlyCost, cur)},
		{"Yearly cost", cli.FormatMoney(stats.TotalYearlyCost, cur)},
		{"Daily average", cli.FormatMoney(stats.TotalYearlyCost/365, cur)},
		{"---"},
		{fmt.Sprintf("Due in %dd", a.Options().UpcomingDays), cli.FormatNumber(int64(len(stats.UpcomingRenewals)))},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(stats.UpcomingRenewals) > 0 {
		fmt.Println()
		limit := min(len(stats.UpcomingRenewals), 5)
		fmt.Print(renderRenewals("Next renewals", stats.UpcomingRenewals[:limit], today, a.Options().UpcomingDays))
	}

	trend := a.PriceTrend(result.Subscriptions)
	if len(trend.CurrencyBreakdown) > 1 {
		fmt.Println()
		fmt.Println(cli.RenderMuted("  Totals mix currencies at face value. Run `subs report --convert " + cur + "` for converted totals."))
	}

	return nil
}
