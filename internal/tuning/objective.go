package tuning

import (
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

// CostFunction scores a completed simulation run. Lower is better.
type CostFunction interface {
	// Evaluate computes the cost of a run
	Evaluate(run *models.SimulationRun) float64

	// Name returns the name of the cost function
	Name() string
}

// DamagePenalty is the cost added to any run that injures the tissue.
// It dominates every achievable overshoot/settling combination so a
// damaging candidate can never beat a safe one.
const DamagePenalty = 1000.0

// SafetyCost is the standard tuning objective:
// overshoot + settling time + DamagePenalty if the tissue was damaged.
type SafetyCost struct{}

func (SafetyCost) Name() string {
	return "overshoot+settling+damage"
}

func (SafetyCost) Evaluate(run *models.SimulationRun) float64 {
	cost := run.OvershootN + run.SettlingS
	if run.Damage {
		cost += DamagePenalty
	}
	return cost
}
