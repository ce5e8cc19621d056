package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// PDF fonts
	Font         string `mapstructure:"font" yaml:"font"`
	FallbackFont string `mapstructure:"fallback_font" yaml:"fallback_font"`
	FontFile     string `mapstructure:"font_file" yaml:"font_file"`

	// Plots
	HistBins      int     `mapstructure:"hist_bins" yaml:"hist_bins"`
	PlotWidthIn   float64 `mapstructure:"plot_width_in" yaml:"plot_width_in"`
	PlotHeightIn  float64 `mapstructure:"plot_height_in" yaml:"plot_height_in"`
	HistogramPath string  `mapstructure:"histogram_path" yaml:"histogram_path"`
	ScatterPath   string  `mapstructure:"scatter_path" yaml:"scatter_path"`

	// Reports
	ReportFormat      string  `mapstructure:"report_format" yaml:"report_format"`
	ProfileSampleRows int     `mapstructure:"profile_sample_rows" yaml:"profile_sample_rows"`
	OutlierThreshold  float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	Correlations      bool    `mapstructure:"correlations" yaml:"correlations"`

	// Sources
	Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet          string `mapstructure:"sheet" yaml:"sheet"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	ServeAddr string `mapstructure:"serve_addr" yaml:"serve_addr"`
}

// Defaults returns the built-in configuration, used when no file or env
// value overrides a key.
func Defaults() *Global {
	return &Global{
		Font:              "Arial",
		FallbackFont:      "Helvetica",
		HistBins:          30,
		PlotWidthIn:       6.4,
		PlotHeightIn:      4.8,
		HistogramPath:     "plot_var.png",
		ScatterPath:       "plot_two_vars.png",
		ReportFormat:      "html",
		ProfileSampleRows: 5,
		OutlierThreshold:  3.5,
		Correlations:      true,
		HTTPTimeoutSec:    60,
		LogLevel:          "info",
		ServeAddr:         "127.0.0.1:8080",
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dfstats/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".dfstats")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded into the environment first, without overriding it.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DFSTATS")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("font", d.Font)
	v.SetDefault("fallback_font", d.FallbackFont)
	v.SetDefault("font_file", d.FontFile)
	v.SetDefault("hist_bins", d.HistBins)
	v.SetDefault("plot_width_in", d.PlotWidthIn)
	v.SetDefault("plot_height_in", d.PlotHeightIn)
	v.SetDefault("histogram_path", d.HistogramPath)
	v.SetDefault("scatter_path", d.ScatterPath)
	v.SetDefault("report_format", d.ReportFormat)
	v.SetDefault("profile_sample_rows", d.ProfileSampleRows)
	v.SetDefault("outlier_threshold", d.OutlierThreshold)
	v.SetDefault("correlations", d.Correlations)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("sheet", d.Sheet)
	v.SetDefault("http_timeout_sec", d.HTTPTimeoutSec)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("serve_addr", d.ServeAddr)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".dfstats"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
