package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/dfstats-cli/internal/analysis"
	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
	"github.com/KaramelBytes/dfstats-cli/internal/report"
)

// loadDataset reads source with the delimiter/sheet/timeout from config and flags.
func loadDataset(ctx context.Context, source string) (*dataset.Dataset, error) {
	opt := dataset.Options{}
	if cfg != nil {
		d, err := parseDelimiter(cfg.Delimiter)
		if err != nil {
			return nil, err
		}
		opt.Delimiter = d
		opt.Sheet = cfg.Sheet
		if cfg.HTTPTimeoutSec > 0 {
			opt.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		}
	}
	return dataset.Load(ctx, source, opt)
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

// reportOptions maps configuration onto report rendering settings.
func reportOptions() report.Options {
	opt := report.DefaultOptions()
	if cfg == nil {
		return opt
	}
	if cfg.Font != "" {
		opt.Font = cfg.Font
	}
	if cfg.FallbackFont != "" {
		opt.FallbackFont = cfg.FallbackFont
	}
	opt.FontFile = cfg.FontFile
	if cfg.HistBins > 0 {
		opt.Bins = cfg.HistBins
	}
	prof := analysis.DefaultProfileOptions()
	if cfg.ProfileSampleRows > 0 {
		prof.SampleRows = cfg.ProfileSampleRows
	}
	if cfg.OutlierThreshold > 0 {
		prof.OutlierThreshold = cfg.OutlierThreshold
	}
	prof.Correlations = cfg.Correlations
	opt.Profile = prof
	return opt
}
