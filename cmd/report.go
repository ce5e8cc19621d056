package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dfstats-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	repTitle        string
	repName         string
	repPlots        []string
	repVars         []string
	repFormat       string
	repUncompressed bool
)

var reportCmd = &cobra.Command{
	Use:   "report <source>",
	Short: "Generate a PDF (statistics + plots) or HTML (profiling) report",
	Example: `  dfstats report data.csv --title "Housing" --name out/housing --format pdf --plot plot_var.png
  dfstats report data.csv --title "Housing" --name out/housing --vars price,area`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		format := repFormat
		if !cmd.Flags().Changed("format") && cfg != nil && cfg.ReportFormat != "" {
			format = cfg.ReportFormat
		}
		format = strings.ToLower(strings.TrimSpace(format))
		name := repName
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		ds, err := loadDataset(ctx, args[0])
		if err != nil {
			return err
		}
		opt := reportOptions()
		opt.Uncompressed = repUncompressed
		res, err := report.Generate(ctx, ds, report.Request{
			Title:     repTitle,
			Name:      name,
			Plots:     repPlots,
			Variables: repVars,
			Format:    format,
		}, opt)
		if err != nil {
			return err
		}
		if res.Format == report.FormatPDF {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ PDF report generated: %s (%d pages)\n", res.Path, res.Pages)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ HTML report generated: %s\n", res.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repTitle, "title", "t", "Dataset Report", "report title")
	reportCmd.Flags().StringVarP(&repName, "name", "n", "", "output path without extension (writes <name>.pdf or <name>.html)")
	reportCmd.Flags().StringArrayVar(&repPlots, "plot", nil, "image to append to PDF reports (repeatable)")
	reportCmd.Flags().StringSliceVar(&repVars, "vars", nil, "comma-separated variables (PDF: default all; HTML: required)")
	reportCmd.Flags().StringVarP(&repFormat, "format", "f", "html", "report format: pdf|html")
	reportCmd.Flags().BoolVar(&repUncompressed, "uncompressed", false, "PDF: disable stream compression")
}
