package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/config"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/fx"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/logging"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/pipeline"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDBPath    string
	flagMonths    int
	flagQuiet     bool
	flagLogLevel  string
	flagLogFormat string
	flagNow       string
)

// appCfg is loaded once per invocation before any command runs.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "subs",
	Short:             "Subscription cost analytics",
	Long:              "Track recurring subscriptions: monthly and yearly costs, spend history, and upcoming renewals.",
	PersistentPreRunE: setupRuntime,
	RunE:              runSummary,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Subscription database path (default from config)")
	rootCmd.PersistentFlags().IntVarP(&flagMonths, "months", "n", 0, "History and forecast window in months (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&flagNow, "now", "", "Evaluate reports as of this date (YYYY-MM-DD)")
}

func setupRuntime(_ *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	if err := logging.Setup(level, flagLogFormat); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appCfg = cfg

	if flagNow != "" {
		if _, err := model.ParseDate(flagNow); err != nil {
			return fmt.Errorf("--now: %w", err)
		}
	}
	return nil
}

// clock returns the reporting clock, pinned to noon of --now when set.
func clock() func() time.Time {
	if flagNow == "" {
		return time.Now
	}
	d, err := model.ParseDate(flagNow)
	if err != nil {
		return time.Now
	}
	pinned := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.Local)
	return func() time.Time { return pinned }
}

func dbPath() string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return appCfg.DBPath()
}

func openStore() (*store.Store, error) {
	return store.Open(dbPath())
}

// analysisOptions merges config defaults with command-line overrides.
func analysisOptions() pipeline.Options {
	opts := pipeline.Options{
		Window:       appCfg.General.WindowMonths,
		UpcomingDays: appCfg.General.UpcomingDays,
		Currency:     appCfg.General.DefaultCurrency,
	}
	if flagMonths > 0 {
		opts.Window = flagMonths
	}
	return opts
}

func newAnalyzer() *pipeline.Analyzer {
	return pipeline.NewAnalyzer(analysisOptions(), clock())
}

func newFXClient() *fx.Client {
	return fx.NewClient(fx.Options{
		Endpoints: appCfg.FX.Endpoints,
		TTL:       appCfg.FX.TTL.Duration,
		Fallback:  config.FallbackRates(appCfg, clock()()),
		Now:       clock(),
	})
}

// loadData is the shared snapshot path used by all report commands.
func loadData(ctx context.Context) (*pipeline.LoadResult, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	result, err := pipeline.Load(ctx, st, clock())
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		for _, d := range result.Diagnostics {
			fmt.Fprintf(os.Stderr, "  warning: %q has unknown billing cycle %q and is excluded from costs\n", d.Name, d.Cycle)
		}
	}
	return result, nil
}

// reportCurrency is the label used for cross-currency totals.
func reportCurrency() string {
	return analysisOptions().Currency
}
