package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newTissuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tissues",
		Short: "List the tissue profiles in the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(cmd)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(table.Profiles())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %12s %14s %10s %-22s %10s\n",
				"NAME", "STIFF (kPa)", "BREAK (N)", "FRICTION", "DEFAULT GAINS", "MAX (N)")
			for _, p := range table.Profiles() {
				fmt.Fprintf(out, "%-12s %12g %14g %10g Kp=%-5g Ki=%-5g Kd=%-5g %8g\n",
					p.Name, p.StiffnessKPa, p.BreakingPointN, p.Friction,
					p.DefaultGains.Kp, p.DefaultGains.Ki, p.DefaultGains.Kd, p.MaxForceN)
			}
			return nil
		},
	}
}
