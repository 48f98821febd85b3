package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/export"
	"github.com/ShawnMa123/manage-my-service-subscription/internal/source"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export subscriptions (yaml, json) or a report (md, csv, xlsx)",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var (
	exportFormat string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "Output format: yaml, json, md, csv, xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput) //nolint:gosec // output path chosen by the user
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutput, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch strings.ToLower(exportFormat) {
	case "yaml", "yml":
		err = source.Encode(w, source.FormatYAML, result.Subscriptions)
	case "json":
		err = source.Encode(w, source.FormatJSON, result.Subscriptions)
	default:
		format, perr := export.ParseFormat(exportFormat)
		if perr != nil {
			return perr
		}
		if format == export.FormatXLSX && exportOutput == "" {
			return fmt.Errorf("xlsx output needs --output")
		}
		a := newAnalyzer()
		report := export.Report{
			GeneratedAt:   result.LoadedAt,
			Currency:      reportCurrency(),
			Subscriptions: result.Subscriptions,
			Analysis:      a.ComprehensiveAnalysis(result.Subscriptions),
		}
		if format == export.FormatXLSX {
			err = export.WriteWorkbook(w, report)
		} else {
			err = export.WriteText(w, format, report)
		}
	}
	if err != nil {
		return err
	}

	if exportOutput != "" && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %d subscriptions to %s\n", len(result.Subscriptions), exportOutput)
	}
	return nil
}
