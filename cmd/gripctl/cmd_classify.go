package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GripSim-25-26J-441/control-core/internal/vision"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <scan>",
		Short: "Classify a tissue scan image",
		Long: `classify reads a scan image (PNG, JPEG, GIF, or BMP) and prints the
detected tissue with its profile. Unrecognizable input is reported as
Unknown rather than an error; the simulator treats the label as a hint
that the surgeon can always override.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read scan: %w", err)
			}

			detected := vision.ClassifyBytes(vision.NewColorHeuristic(), data)
			profile := table.LookupOrUnknown(detected)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"detected": detected,
					"profile":  profile,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Detected: %s (stiffness %g kPa, breaking point %g N)\n",
				profile.Name, profile.StiffnessKPa, profile.BreakingPointN)
			return nil
		},
	}
}
