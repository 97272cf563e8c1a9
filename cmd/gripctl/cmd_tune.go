package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GripSim-25-26J-441/control-core/internal/gripd"
)

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Tune PID gains for a tissue and print the decision log",
		Long: `tune evaluates a budget of gain candidates against the safety
objective (overshoot + settling time, with a heavy penalty for any
candidate that injures the tissue) and reports the winner. The final
run in the output replays the winning gains at full length.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			input, err := buildRunInput(cmd)
			if err != nil {
				return err
			}
			input.Mode = gripd.ModeTune
			input.Budget, _ = cmd.Flags().GetInt("budget")
			input.Strategy, _ = cmd.Flags().GetString("strategy")
			input.Seed, _ = cmd.Flags().GetInt64("seed")
			input.Workers, _ = cmd.Flags().GetInt("workers")

			result, err := executor.Run(cmd.Context(), input)
			if err != nil {
				return err
			}
			if err := printRunResult(cmd, result); err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if !jsonOut && result.Tuning != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Best cost: %.4f over %d candidates (%d rejected kept as ghosts).\n",
					result.Tuning.BestCost, result.Tuning.Evaluated, len(result.Tuning.Rejected))
			}
			return nil
		},
	}

	addRunFlags(cmd)
	cmd.Flags().Int("budget", gripd.DefaultTuneBudget, "number of candidates to evaluate")
	cmd.Flags().String("strategy", "grid", "candidate source: grid or perturbation")
	cmd.Flags().Int64("seed", 0, "random seed for the perturbation strategy")
	cmd.Flags().Int("workers", 0, "parallel evaluation workers (sequential when 0)")
	return cmd
}
