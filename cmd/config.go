package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/dfstats-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dfstats configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "font: %s\n", cfg.Font)
		fmt.Fprintf(out, "fallback_font: %s\n", cfg.FallbackFont)
		if cfg.FontFile != "" {
			fmt.Fprintf(out, "font_file: %s\n", cfg.FontFile)
		}
		fmt.Fprintf(out, "hist_bins: %d\n", cfg.HistBins)
		fmt.Fprintf(out, "plot_width_in: %.2f\n", cfg.PlotWidthIn)
		fmt.Fprintf(out, "plot_height_in: %.2f\n", cfg.PlotHeightIn)
		fmt.Fprintf(out, "histogram_path: %s\n", cfg.HistogramPath)
		fmt.Fprintf(out, "scatter_path: %s\n", cfg.ScatterPath)
		fmt.Fprintf(out, "report_format: %s\n", cfg.ReportFormat)
		fmt.Fprintf(out, "profile_sample_rows: %d\n", cfg.ProfileSampleRows)
		fmt.Fprintf(out, "outlier_threshold: %.2f\n", cfg.OutlierThreshold)
		fmt.Fprintf(out, "correlations: %t\n", cfg.Correlations)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.Sheet != "" {
			fmt.Fprintf(out, "sheet: %s\n", cfg.Sheet)
		}
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "serve_addr: %s\n", cfg.ServeAddr)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "font":
			cfg.Font = val
		case "fallback_font":
			cfg.FallbackFont = val
		case "font_file":
			cfg.FontFile = val
		case "hist_bins", "profile_sample_rows", "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			switch key {
			case "hist_bins":
				cfg.HistBins = i
			case "profile_sample_rows":
				cfg.ProfileSampleRows = i
			default:
				cfg.HTTPTimeoutSec = i
			}
		case "plot_width_in", "plot_height_in", "outlier_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid positive float for %s: %v", key, val)
			}
			switch key {
			case "plot_width_in":
				cfg.PlotWidthIn = f
			case "plot_height_in":
				cfg.PlotHeightIn = f
			default:
				cfg.OutlierThreshold = f
			}
		case "histogram_path":
			cfg.HistogramPath = val
		case "scatter_path":
			cfg.ScatterPath = val
		case "report_format":
			switch strings.ToLower(val) {
			case "pdf", "html":
				cfg.ReportFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid report_format: %s (use pdf or html)", val)
			}
		case "correlations":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for correlations: %w", err)
			}
			cfg.Correlations = b
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "sheet":
			cfg.Sheet = val
		case "log_level":
			cfg.LogLevel = val
		case "serve_addr":
			cfg.ServeAddr = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
