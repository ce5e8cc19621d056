package cmd

import (
	"os"

	"github.com/KaramelBytes/dfstats-cli/internal/logging"
	"github.com/KaramelBytes/dfstats-cli/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <source>",
	Short: "Browse statistics, plots and the profiling report of a dataset over HTTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		addr := serveAddr
		if !cmd.Flags().Changed("addr") && cfg != nil && cfg.ServeAddr != "" {
			addr = cfg.ServeAddr
		}
		level := "info"
		if cfg != nil && cfg.LogLevel != "" {
			level = cfg.LogLevel
		}
		if debug {
			level = "debug"
		}
		opt := reportOptions()
		api := server.NewWebAPI(logging.NewJSON(os.Stdout, level), ds, server.Config{
			Addr:   addr,
			Report: opt,
			Bins:   opt.Bins,
		})
		return api.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address host:port")
}
