package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penwyp/UsagePivot/config"
	"github.com/penwyp/UsagePivot/internal"
	"github.com/penwyp/UsagePivot/logging"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
	debug    bool
	verbose  bool
	useCache bool
	cacheDir string
	timezone string
)

var rootCmd = &cobra.Command{
	Use:   "usagepivot",
	Short: "License usage pivot and concurrency report",
	Long: `usagepivot joins a license server usage export with the vendor feature
catalog and the admin user list, pivots the usage by performer and by tool,
estimates the peak number of concurrent sessions per product and compares
it with the seats recorded on the provisioning sheet.

The result is written as <usage>-processed.xlsx next to the usage workbook.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line until it completes or the process is
// interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: first of ./usagepivot.yaml, ~/.config/usagepivot/config.yaml, /etc/usagepivot/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "write JSON logs to this file instead of stderr")
	flags.BoolVar(&debug, "debug", false, "enable debug mode")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&useCache, "cache", false, "cache parsed sheets between runs")
	flags.StringVar(&cacheDir, "cache-dir", "", "sheet cache directory (default ~/.cache/usagepivot/sheets)")
	flags.StringVar(&timezone, "timezone", "", "timezone of the usage timestamps (default UTC)")
}

// loadConfiguration layers the config file, the environment and the flags
// of cmd over the defaults
func loadConfiguration(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()

	if cfgFile != "" {
		loader.AddSource(config.NewFileSource(cfgFile))
	} else if path, ok := config.FirstExisting(config.ConfigPaths()); ok {
		loader.AddSource(config.NewOptionalFileSource(path))
	}
	loader.AddSource(config.NewEnvSource(config.EnvPrefix, config.DotEnvFiles...))
	loader.AddSource(config.NewFlagSource(cmd.Flags()))
	loader.AddValidator(config.NewStandardValidator())

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	if cfg.Debug.Enabled {
		cfg.App.LogLevel = "debug"
	}
	return cfg, nil
}

// setup loads the configuration and starts the global logger. A quiet
// setup keeps stderr clean unless a log file is configured.
func setup(cmd *cobra.Command, quiet bool) (*config.Config, error) {
	cfg, err := loadConfiguration(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.App.LogLevel
	if quiet && cfg.App.LogFile == "" {
		level = "error"
	}
	if err := logging.InitGlobalLogger(level, cfg.App.LogFile); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.App.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Configuration: %+v\n", cfg)
	}
	return cfg, nil
}

func inputsFromArgs(args []string) internal.Inputs {
	return internal.Inputs{
		Usage:        args[0],
		Features:     args[1],
		Users:        args[2],
		Provisioning: args[3],
	}
}

const inputArgsUsage = "<usage> <features> <users> <provisioning>"
