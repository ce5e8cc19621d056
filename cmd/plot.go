package cmd

import (
	"fmt"

	"github.com/KaramelBytes/dfstats-cli/internal/plot"
	"github.com/spf13/cobra"
)

var (
	plotOutput      string
	plotInteractive bool
	plotBins        int
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render histogram or scatter plots",
	Example: `  dfstats plot hist data.csv price --output price.png
  dfstats plot scatter data.csv area price --interactive`,
}

var plotHistCmd = &cobra.Command{
	Use:     "hist <source> <variable>",
	Aliases: []string{"histogram"},
	Short:   "Histogram of a numeric variable",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		opt := plotOptions(cmd, plot.DefaultHistogramPath, func() string { return cfg.HistogramPath })
		if err := plot.Histogram(ds, args[1], opt); err != nil {
			return err
		}
		reportPlot(cmd, opt)
		return nil
	},
}

var plotScatterCmd = &cobra.Command{
	Use:   "scatter <source> <x> <y>",
	Short: "Scatter plot of two numeric variables",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		opt := plotOptions(cmd, plot.DefaultScatterPath, func() string { return cfg.ScatterPath })
		if err := plot.Scatter(ds, args[1], args[2], opt); err != nil {
			return err
		}
		reportPlot(cmd, opt)
		return nil
	},
}

// plotOptions resolves the output path: --output, then config, then the default.
func plotOptions(cmd *cobra.Command, fallback string, fromConfig func() string) plot.Options {
	opt := plot.Options{Interactive: plotInteractive, Path: plotOutput}
	if cfg != nil {
		opt.Width, opt.Height, opt.Bins = cfg.PlotWidthIn, cfg.PlotHeightIn, cfg.HistBins
		if opt.Path == "" {
			opt.Path = fromConfig()
		}
	}
	if cmd.Flags().Changed("bins") && plotBins > 0 {
		opt.Bins = plotBins
	}
	if opt.Path == "" {
		opt.Path = fallback
	}
	return opt
}

func reportPlot(cmd *cobra.Command, opt plot.Options) {
	if opt.Interactive {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Opened plot in viewer")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote plot to %s\n", opt.Path)
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.AddCommand(plotHistCmd)
	plotCmd.AddCommand(plotScatterCmd)
	plotCmd.PersistentFlags().StringVarP(&plotOutput, "output", "o", "", "image path; extension selects the format (png, svg, pdf)")
	plotCmd.PersistentFlags().BoolVarP(&plotInteractive, "interactive", "i", false, "open the plot in the system viewer instead of writing --output")
	plotHistCmd.Flags().IntVar(&plotBins, "bins", 30, "number of histogram bins")
}
