package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GripSim-25-26J-441/control-core/internal/gripd"
	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/logger"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "gripctl",
		Short: "Surgical gripper force control simulator",
		Long: `gripctl runs the gripper force simulator from the command line.

It simulates a PID-controlled gripper jaw against a tissue profile,
tunes the gains against a safety objective, and classifies tissue
scans, without needing a running gripd daemon.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logger.SetDefault(logger.NewText(level, os.Stderr))
		},
	}

	rootCmd.PersistentFlags().String("tissues", "", "tissue table YAML (built-in table when empty)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newTissuesCmd(),
		newClassifyCmd(),
		newSimulateCmd(),
		newTuneCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gripctl version %s\n", version)
		},
	}
}

// loadTable resolves the tissue table from the --tissues flag
func loadTable(cmd *cobra.Command) (*config.TissueTable, error) {
	path, _ := cmd.Flags().GetString("tissues")
	if path == "" {
		return config.DefaultTable(), nil
	}
	return config.LoadTable(path)
}

// newExecutor builds a synchronous executor over a throwaway store
func newExecutor(cmd *cobra.Command) (*gripd.RunExecutor, error) {
	table, err := loadTable(cmd)
	if err != nil {
		return nil, err
	}
	return gripd.NewRunExecutor(gripd.NewRunStore(), table), nil
}
