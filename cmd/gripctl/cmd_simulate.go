package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GripSim-25-26J-441/control-core/internal/gripd"
	"github.com/GripSim-25-26J-441/control-core/internal/vision"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

// addRunFlags registers the flags shared by simulate and tune
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("tissue", "", "tissue name to use as the detection")
	cmd.Flags().String("scan", "", "scan image to classify for the detection")
	cmd.Flags().String("override", "", "surgeon override tissue (empty or 'auto' keeps the detection)")
	cmd.Flags().Float64("target", 0, "target grip force in newtons")
	cmd.Flags().Bool("breathing", false, "enable the breathing disturbance")
	cmd.Flags().Float64("breathing-amplitude", 0, "breathing amplitude in position units (default when 0)")
	cmd.Flags().Float64("breathing-period", 0, "breathing period in seconds (default when 0)")
	cmd.Flags().Float64("duration", 0, "simulated duration in seconds (default when 0)")
	cmd.Flags().Float64("dt", 0, "integration step in seconds (default when 0)")
	cmd.MarkFlagRequired("target")
}

// buildRunInput assembles the shared parts of a RunInput from flags
func buildRunInput(cmd *cobra.Command) (*gripd.RunInput, error) {
	detected, _ := cmd.Flags().GetString("tissue")
	if scanPath, _ := cmd.Flags().GetString("scan"); scanPath != "" {
		data, err := os.ReadFile(scanPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read scan: %w", err)
		}
		detected = vision.ClassifyBytes(vision.NewColorHeuristic(), data)
	}

	override, _ := cmd.Flags().GetString("override")
	target, _ := cmd.Flags().GetFloat64("target")
	duration, _ := cmd.Flags().GetFloat64("duration")
	dt, _ := cmd.Flags().GetFloat64("dt")
	breathing, _ := cmd.Flags().GetBool("breathing")
	amplitude, _ := cmd.Flags().GetFloat64("breathing-amplitude")
	period, _ := cmd.Flags().GetFloat64("breathing-period")

	return &gripd.RunInput{
		Detected: detected,
		Override: override,
		TargetN:  target,
		Breathing: models.Breathing{
			Enabled:   breathing,
			Amplitude: amplitude,
			PeriodS:   period,
		},
		DurationS: duration,
		DtS:       dt,
	}, nil
}

func printRunResult(cmd *cobra.Command, result *gripd.RunResult) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	}
	fmt.Fprint(cmd.OutOrStdout(), result.Log)
	return nil
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one grip simulation and print the decision log",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			input, err := buildRunInput(cmd)
			if err != nil {
				return err
			}
			input.Mode = gripd.ModeSimulate

			if cmd.Flags().Changed("kp") || cmd.Flags().Changed("ki") || cmd.Flags().Changed("kd") {
				kp, _ := cmd.Flags().GetFloat64("kp")
				ki, _ := cmd.Flags().GetFloat64("ki")
				kd, _ := cmd.Flags().GetFloat64("kd")
				input.Gains = &models.PIDGains{Kp: kp, Ki: ki, Kd: kd}
			}

			result, err := executor.Run(cmd.Context(), input)
			if err != nil {
				return err
			}
			return printRunResult(cmd, result)
		},
	}

	addRunFlags(cmd)
	cmd.Flags().Float64("kp", 0, "proportional gain (profile default when unset)")
	cmd.Flags().Float64("ki", 0, "integral gain (profile default when unset)")
	cmd.Flags().Float64("kd", 0, "derivative gain (profile default when unset)")
	return cmd
}
