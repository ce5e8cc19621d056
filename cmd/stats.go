package cmd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/dfstats-cli/internal/analysis"
	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute a single statistic of a variable",
	Example: `  dfstats stats mean data.csv price
  dfstats stats percentile data.csv price 90
  dfstats stats std https://example.com/data.csv price`,
}

// scalarCmd builds a `stats <name> <source> <variable>` subcommand.
func scalarCmd(name, short string, fn func(*dataset.Dataset, string) (float64, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <source> <variable>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			v, err := fn(ds, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatScalar(v))
			return nil
		},
	}
}

var statsPercentileCmd = &cobra.Command{
	Use:   "percentile <source> <variable> <p>",
	Short: "Percentile p (0-100) of a numeric variable, linearly interpolated",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid percentile %q: %w", args[2], err)
		}
		ds, err := loadDataset(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		v, err := ds.Percentile(args[1], p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatScalar(v))
		return nil
	},
}

func formatScalar(v float64) string {
	return analysis.Cell{Value: v, Valid: !math.IsNaN(v)}.String()
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(scalarCmd("mean", "Arithmetic mean of a numeric variable", (*dataset.Dataset).Mean))
	statsCmd.AddCommand(scalarCmd("median", "Median of a numeric variable", (*dataset.Dataset).Median))
	statsCmd.AddCommand(scalarCmd("std", "Sample standard deviation of a numeric variable", (*dataset.Dataset).Std))
	statsCmd.AddCommand(statsPercentileCmd)
}
