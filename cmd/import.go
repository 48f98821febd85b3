package cmd

import (
	"fmt"
	"os"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/cli"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/source"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file|dir>",
	Short: "Import subscriptions from YAML or JSON files",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var importDryRun bool

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and validate only; write nothing")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	files, err := source.ScanDir(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("\n  No .yaml, .yml or .json files in %s\n", args[0])
		return nil
	}

	var (
		subs      []model.Subscription
		badRows   int
		badFiles  int
		rowErrors []error
	)
	for _, f := range files {
		res := source.ParseFile(f)
		if res.Err != nil {
			badFiles++
			fmt.Fprintf(os.Stderr, "  skipping %s: %v\n", f.Path, res.Err)
			continue
		}
		subs = append(subs, res.Subscriptions...)
		badRows += res.ParseErrors
		rowErrors = append(rowErrors, res.Errors...)
	}

	if !flagQuiet {
		for _, e := range rowErrors {
			fmt.Fprintf(os.Stderr, "  invalid record: %v\n", e)
		}
	}

	fmt.Printf("  Read %s from %s",
		cli.FormatCount(len(subs), "subscription", "subscriptions"),
		cli.FormatCount(len(files)-badFiles, "file", "files"))
	if badRows > 0 {
		fmt.Printf(" (%d invalid skipped)", badRows)
	}
	fmt.Println()

	if importDryRun || len(subs) == 0 {
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var progress func(int)
	if !flagQuiet {
		bar := progressbar.NewOptions(len(subs),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("  Importing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		progress = func(done int) { _ = bar.Set(done) }
		defer func() { _ = bar.Finish() }()
	}

	n, err := st.ImportSubscriptions(cmd.Context(), subs, progress)
	if err != nil {
		return fmt.Errorf("import rolled back: %w", err)
	}
	fmt.Printf("  Imported %s into %s\n", cli.FormatCount(n, "subscription", "subscriptions"), dbPath())
	return nil
}
