package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/penwyp/UsagePivot/config"
	"github.com/penwyp/UsagePivot/internal"
	"github.com/penwyp/UsagePivot/logging"
	"github.com/penwyp/UsagePivot/output"
)

var (
	reportOutputDir string
	reportPrint     string
	reportView      string
	reportWatch     bool
	reportNoUsers   bool
)

var reportCmd = &cobra.Command{
	Use:   "report " + inputArgsUsage,
	Short: "Build the processed usage workbook",
	Long: `Build <usage>-processed.xlsx from the four input workbooks.

The processed workbook keeps every sheet of the usage workbook, with the
usage sheet extended by Vendor Name, Product Name, Organization and Project
Name, and adds the Performer Summary, Tool Summary and Actual Usage sheets.

Examples:
  usagepivot report usage.xlsx features.xlsx users.xlsx provisioning.xlsx
  usagepivot report --print table --view provision usage.xlsx features.xlsx users.xlsx prov.xlsx
  usagepivot report --watch --output-dir out usage.csv features.xlsx users.xlsx prov.xlsx`,
	Args: cobra.ExactArgs(4),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutputDir, "output-dir", "d", "", "directory for the processed workbook (default: next to the usage workbook)")
	reportCmd.Flags().StringVarP(&reportPrint, "print", "p", "none", "also print a table to stdout (none, table, csv, json)")
	reportCmd.Flags().StringVar(&reportView, "view", "performer", "table to print (performer, tool, provision)")
	reportCmd.Flags().BoolVarP(&reportWatch, "watch", "w", false, "rebuild whenever an input changes")
	reportCmd.Flags().BoolVar(&reportNoUsers, "no-users", false, "leave out the per-user rows")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer logging.SyncGlobalLogger()

	reporter, err := internal.NewReporter(cfg)
	if err != nil {
		return err
	}
	defer reporter.Close()

	in := inputsFromArgs(args)
	ctx := cmd.Context()

	result, err := reporter.Run(ctx, in)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}
	if err := printResult(cmd.OutOrStdout(), cfg.Report, result); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", result.Output)

	if !cfg.Report.Watch {
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching inputs, press Ctrl+C to stop\n")
	return reporter.Watch(ctx, in, reporter.Run, func(res *internal.Result, err error) {
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Rebuild failed: %v\n", err)
			return
		}
		if err := printResult(cmd.OutOrStdout(), cfg.Report, res); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Print failed: %v\n", err)
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", res.Output)
	})
}

// printResult writes the configured view of result to w in the configured
// format
func printResult(w io.Writer, report config.ReportConfig, result *internal.Result) error {
	format, err := output.ParseFormat(report.Print)
	if err != nil {
		return err
	}
	formatter, err := output.NewFormatter(format)
	if err != nil || formatter == nil {
		return err
	}

	table, err := result.Table(report.View)
	if err != nil {
		return err
	}
	return formatter.Format(w, table)
}
