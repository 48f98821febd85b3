package cmd

import (
	"fmt"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"

	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Renewals expected in each coming month",
	RunE:  runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(result.Subscriptions) == 0 {
		fmt.Println("\n  No subscriptions found.")
		return nil
	}

	a := newAnalyzer()
	entries := a.RenewalTimeline(result.Subscriptions)
	cur := reportCurrency()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RENEWAL FORECAST  Next %d months", a.Options().Window)))
	fmt.Println()

	maxAmount, total := 0.0, 0.0
	for _, e := range entries {
		maxAmount = max(maxAmount, e.Amount)
		total += e.Amount
	}

	rows := make([][]string, 0, len(entries)+2)
	for _, e := range entries {
		bar := cli.RenderHorizontalBar("", e.Amount, maxAmount, 0, 20)
		rows = append(rows, []string{
			e.Date.String(),
			cli.FormatNumber(int64(e.Count)),
			cli.FormatMoney(e.Amount, cur),
			bar,
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", "", cli.FormatMoney(total, cur), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"Month", "Renewals", "Charged", ""},
		Rows:      rows,
		LeftAlign: []int{3},
	}))
	fmt.Println()

	return nil
}
