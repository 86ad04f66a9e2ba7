package main

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via -ldflags.
	Version = "dev"

	cfgFile         string
	flagAddress     string
	flagPort        int
	flagDir         string
	flagDBFile      string
	flagLogLevel    string
	flagLogDir      string
	flagMetricsAddr string
	flagRateLimit   float64
	flagShardCount  int
)

var rootCmd = &cobra.Command{
	Use:           "kvflowd",
	Short:         "kvflowd is an in-memory key/value server speaking a Redis-like wire protocol",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&flagAddress, "address", "", "bind address override (default 0.0.0.0)")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "bind port override (default 6379)")
	rootCmd.Flags().StringVar(&flagDir, "dir", "", "snapshot directory override")
	rootCmd.Flags().StringVar(&flagDBFile, "dbfilename", "", "snapshot filename override")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level override (debug|info|warn|error)")
	rootCmd.Flags().StringVar(&flagLogDir, "log-dir", "", "log directory override")
	rootCmd.Flags().StringVar(&flagMetricsAddr, "metrics-address", "", "admin HTTP mux bind address; empty disables it")
	rootCmd.Flags().Float64Var(&flagRateLimit, "rate-limit", -1, "per-connection commands/sec override; 0 disables limiting")
	rootCmd.Flags().IntVar(&flagShardCount, "shard-count", 0, "number of store shards override")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kvflowd version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println("kvflowd " + Version)
		return nil
	},
}
