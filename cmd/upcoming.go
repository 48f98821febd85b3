package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/fx"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"

	"github.com/spf13/cobra"
)

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Renewals due soon, including overdue ones",
	RunE:  runUpcoming,
}

var (
	upcomingDays    int
	upcomingConvert string
)

func init() {
	upcomingCmd.Flags().IntVarP(&upcomingDays, "days", "d", 0, "Look-ahead in days (default from config)")
	upcomingCmd.Flags().StringVar(&upcomingConvert, "convert", "", "Also total the due amounts in this currency using exchange rates")
	rootCmd.AddCommand(upcomingCmd)
}

func runUpcoming(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	a := newAnalyzer()
	days := a.Options().UpcomingDays
	if upcomingDays > 0 {
		days = upcomingDays
	}
	today := a.Today()
	due := pipeline.UpcomingRenewals(result.Subscriptions, today, days)

	if len(due) == 0 {
		fmt.Printf("\n  Nothing renews in the next %d days.\n", days)
		return nil
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextDueDate.Before(due[j].NextDueDate.Time)
	})

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("UPCOMING RENEWALS  Next %dd", days)))
	fmt.Println()
	fmt.Print(renderRenewals("", due, today, days))
	fmt.Printf("  Renewing: %s subscriptions\n", cli.RenderProgressBar(len(due), len(result.Subscriptions), 20))

	byCurrency := make(map[string]float64)
	for _, s := range due {
		byCurrency[s.Currency] += s.Price
	}
	codes := make([]string, 0, len(byCurrency))
	for code := range byCurrency {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("  Due %s: %s\n", code, cli.RenderMoney(cli.FormatMoney(byCurrency[code], code)))
	}
	if upcomingConvert != "" {
		target := strings.ToUpper(strings.TrimSpace(upcomingConvert))
		total, missing := convertDue(cmd.Context(), newFXClient(), due, target)
		fmt.Printf("  Due total: %s\n", cli.RenderMoney(cli.FormatMoney(total, target)))
		if len(missing) > 0 {
			fmt.Printf("  %s\n", cli.RenderMuted("No rate for "+strings.Join(missing, ", ")+"; added at face value"))
		}
	}
	fmt.Println()

	return nil
}

// renderRenewals renders subs as a due-date table colored by urgency.
func renderRenewals(title string, subs []model.Subscription, today model.Date, soonDays int) string {
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		days := today.DaysUntil(s.NextDueDate)
		rows = append(rows, []string{
			s.Name,
			s.NextDueDate.String(),
			cli.RenderDue(cli.FormatDue(days), days, min(soonDays, 7)),
			cli.FormatMoney(s.Price, s.Currency),
			s.CycleLabel(),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:     title,
		Headers:   []string{"Name", "Due", "When", "Price", "Cycle"},
		Rows:      rows,
		LeftAlign: []int{1, 2, 4},
	})
}

// convertDue sums subscription prices in target. Currencies without a rate
// are added unconverted and returned sorted.
func convertDue(ctx context.Context, client *fx.Client, subs []model.Subscription, target string) (float64, []string) {
	var total float64
	seen := make(map[string]bool)
	var missing []string
	for _, s := range subs {
		v, ok := client.Convert(ctx, s.Price, s.Currency, target)
		if !ok && !seen[s.Currency] {
			seen[s.Currency] = true
			missing = append(missing, s.Currency)
		}
		total += v
	}
	sort.Strings(missing)
	return total, missing
}
