package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/UsagePivot/config"
	"github.com/penwyp/UsagePivot/internal"
	"github.com/penwyp/UsagePivot/logging"
	"github.com/penwyp/UsagePivot/ui"
)

var (
	viewTheme   string
	viewNoColor bool
	viewWatch   bool
	viewNoUsers bool
)

var viewCmd = &cobra.Command{
	Use:   "view " + inputArgsUsage,
	Short: "Browse the report tables interactively",
	Long: `Build the report in memory and open it in the terminal viewer.

Nothing is written to disk. Use tab and shift+tab to switch between the
Performer Summary, Tool Summary and Actual Usage tables, r to rebuild from
the inputs and q to quit. With --watch the tables are rebuilt whenever an
input changes.`,
	Args: cobra.ExactArgs(4),
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVarP(&viewTheme, "theme", "t", "", "UI theme (dark, light, high-contrast)")
	viewCmd.Flags().BoolVar(&viewNoColor, "no-color", false, "disable colored output")
	viewCmd.Flags().BoolVarP(&viewWatch, "watch", "w", false, "rebuild whenever an input changes")
	viewCmd.Flags().BoolVar(&viewNoUsers, "no-users", false, "leave out the per-user rows")

	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer logging.SyncGlobalLogger()

	reporter, err := internal.NewReporter(cfg)
	if err != nil {
		return err
	}
	defer reporter.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	in := inputsFromArgs(args)
	result, err := reporter.Build(ctx, in)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	reload := func() (ui.Data, error) {
		res, err := reporter.Build(ctx, in)
		if err != nil {
			return ui.Data{}, err
		}
		return res.UIData(), nil
	}

	app := ui.NewApp(ctx, uiConfig(cfg.UI), result.UIData(), reload)

	if cfg.Report.Watch {
		go func() {
			err := reporter.Watch(ctx, in, reporter.Build, func(res *internal.Result, err error) {
				if err != nil {
					app.ReportError(err)
					return
				}
				app.UpdateData(res.UIData())
			})
			if err != nil {
				logging.LogErrorf("Input watcher stopped: %v", err)
			}
		}()
	}

	return app.Start()
}

func uiConfig(c config.UIConfig) ui.Config {
	return ui.Config{
		Theme:       c.Theme,
		TableHeight: c.TableHeight,
		NoColor:     c.NoColor,
	}
}
