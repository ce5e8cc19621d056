package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/KaramelBytes/dfstats-cli/internal/analysis"
	"github.com/KaramelBytes/dfstats-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	sumVars   []string
	sumJSON   bool
	sumOutput string
)

var summaryCmd = &cobra.Command{
	Use:   "summary <source>",
	Short: "Print the statistics table for selected variables (all by default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		t, err := analysis.Describe(ds, sumVars...)
		if err != nil {
			return err
		}
		var out []byte
		if sumJSON {
			out, err = json.MarshalIndent(t, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal json: %w", err)
			}
			out = append(out, '\n')
		} else {
			out = []byte(t.Markdown())
		}
		if sumOutput != "" {
			if err := utils.SafeWriteFile(sumOutput, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", sumOutput)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringSliceVar(&sumVars, "vars", nil, "comma-separated variables to include (default all)")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "print JSON instead of a Markdown table")
	summaryCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "optional path to write the summary")
}
