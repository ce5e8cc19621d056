// Package report writes dataset reports: a PDF with the statistics grid and
// plot images, or a self-contained HTML profiling report.
package report

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/dfstats-cli/internal/analysis"
	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
)

const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
)

// ErrVariablesRequired indicates an HTML report was requested without variables.
var ErrVariablesRequired = errors.New("html report requires at least one variable")

// Request describes one report.
type Request struct {
	Title string
	// Name is the output path without extension.
	Name string
	// Plots are image paths appended below the statistics in PDF reports.
	Plots []string
	// Variables restricts the report. PDF reports default to all columns,
	// HTML reports require them.
	Variables []string
	// Format is "pdf"; anything else produces HTML.
	Format string
}

// Options carries rendering settings shared by both formats.
type Options struct {
	Font         string
	FallbackFont string
	// FontFile registers Font from a TTF file before use.
	FontFile string
	// Uncompressed disables PDF stream compression.
	Uncompressed bool
	Profile      analysis.ProfileOptions
	// Bins for the histograms inlined in HTML reports.
	Bins int
}

// DefaultOptions returns the stock fonts and profiling settings.
func DefaultOptions() Options {
	return Options{
		Font:         "Arial",
		FallbackFont: "Helvetica",
		Profile:      analysis.DefaultProfileOptions(),
		Bins:         30,
	}
}

// Result describes the written report.
type Result struct {
	Path   string
	Format string
	// Pages is the PDF page count; 0 for HTML.
	Pages int
}

// Generate writes {Name}.pdf or {Name}.html for the dataset.
func Generate(ctx context.Context, ds *dataset.Dataset, req Request, opt Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	if strings.EqualFold(strings.TrimSpace(req.Format), FormatPDF) {
		logger.Debug().Str("name", req.Name).Int("plots", len(req.Plots)).Msg("generating pdf report")
		return writePDF(ctx, ds, req, opt)
	}
	logger.Debug().Str("name", req.Name).Strs("variables", req.Variables).Msg("generating html report")
	return writeHTML(ctx, ds, req, opt)
}
