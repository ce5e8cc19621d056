package report

import (
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/dfstats-cli/internal/analysis"
	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
	"github.com/KaramelBytes/dfstats-cli/internal/utils"
)

// PDF layout, in millimetres.
const (
	metricWidth = 35.0
	columnWidth = 22.0
	rowHeight   = 10.0
	titleWidth  = 200.0
	imageX      = 10.0
	imageWidth  = 100.0
	// Images are advanced by a fixed height regardless of their aspect ratio.
	imageHeight = 110.0
	pageMargin  = 20.0
	topReset    = 10.0
	imageGap    = 10.0
)

func writePDF(ctx context.Context, ds *dataset.Dataset, req Request, opt Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	table, err := analysis.Describe(ds, req.Variables...)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!opt.Uncompressed)
	pdf.AddPage()
	family, tr := selectFont(pdf, opt, 12, logger)

	pdf.CellFormat(titleWidth, rowHeight, tr(req.Title), "", 1, "C", false, 0, "")

	pdf.SetFont(family, "", 10)
	pdf.CellFormat(metricWidth, rowHeight, "Statistic", "1", 0, "C", false, 0, "")
	for _, c := range table.Columns {
		pdf.CellFormat(columnWidth, rowHeight, tr(c), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	for i, stat := range table.Statistics {
		pdf.CellFormat(metricWidth, rowHeight, stat, "1", 0, "C", false, 0, "")
		for j := range table.Columns {
			pdf.CellFormat(columnWidth, rowHeight, tr(table.Values[i][j].String()), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	y := pdf.GetY() + imageGap
	_, pageHeight := pdf.GetPageSize()
	limit := pageHeight - pageMargin
	for _, img := range req.Plots {
		if !utils.FileExists(img) {
			logger.Warn().Str("image", img).Msg("image not found, writing placeholder")
			pdf.CellFormat(titleWidth, rowHeight, tr(fmt.Sprintf("Image %s not found.", img)), "", 1, "", false, 0, "")
			continue
		}
		if y+imageHeight > limit {
			pdf.AddPage()
			y = topReset
		}
		pdf.ImageOptions(img, imageX, y, imageWidth, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
		y += imageHeight
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}

	path := req.Name + ".pdf"
	if err := utils.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	pages := pdf.PageCount()
	if err := pdf.OutputFileAndClose(path); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	logger.Info().Str("path", path).Int("pages", pages).Msg("pdf report generated")
	return &Result{Path: path, Format: FormatPDF, Pages: pages}, nil
}

// selectFont sets the primary font, falling back to the secondary one when the
// primary cannot be used. It returns the active family and a text translator
// matching its encoding.
func selectFont(pdf *fpdf.Fpdf, opt Options, size float64, logger *zerolog.Logger) (string, func(string) string) {
	primary, fallback := opt.Font, opt.FallbackFont
	if primary == "" {
		primary = "Arial"
	}
	if fallback == "" {
		fallback = "Helvetica"
	}
	utf8 := false
	if opt.FontFile != "" {
		pdf.AddUTF8Font(primary, "", opt.FontFile)
		utf8 = true
	}
	pdf.SetFont(primary, "", size)
	if pdf.Err() {
		logger.Warn().Err(pdf.Error()).Str("font", primary).Str("fallback", fallback).Msg("font unavailable, using fallback")
		pdf.ClearError()
		pdf.SetFont(fallback, "", size)
		primary, utf8 = fallback, false
	}
	if utf8 {
		return primary, func(s string) string { return s }
	}
	return primary, pdf.UnicodeTranslatorFromDescriptor("")
}
