package cmd

import (
	"context"
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/dfstats-cli/internal/config"
	"github.com/KaramelBytes/dfstats-cli/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagDelimiter string
	flagSheet     string
	flagLogLevel  string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Logger built from config and flags
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "dfstats",
	Short: "dfstats: descriptive statistics, plots and reports for tabular data",
	Long: `dfstats loads a CSV/TSV/XLSX dataset from a path or URL and produces summary statistics,
histogram and scatter plots, and PDF or HTML reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dfstats/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "XLSX: sheet name to load (default first sheet)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("sheet") {
		cfg.Sheet = flagSheet
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	logger = logging.New(os.Stderr, cfg.LogLevel, debug)
}

// commandContext attaches the logger to the command context.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx)
}
