package sim

import (
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
	"github.com/GripSim-25-26J-441/control-core/pkg/utils"
)

// applyMetrics fills the derived fields of a completed run: max force,
// overshoot, damage flag with first damage time, and settling time.
func applyMetrics(run *models.SimulationRun, breakingPointN float64) {
	var maxForce float64
	damage := false
	damageTime := 0.0

	for _, s := range run.Series {
		if s.ForceN > maxForce {
			maxForce = s.ForceN
		}
		if !damage && s.ForceN > breakingPointN {
			damage = true
			damageTime = s.TimeS
		}
	}

	run.MaxForceN = maxForce
	run.Damage = damage
	run.DamageTimeS = damageTime
	if maxForce > run.TargetN {
		run.OvershootN = maxForce - run.TargetN
	}
	run.SettlingS = settlingTime(run.Series, run.TargetN, run.DurationS)
}

// settlingTime returns the first time after which the force stays
// within ±SettlingTolerance of target for the remainder of the run.
// Returns duration when the run never settles and zero when every
// sample is already inside the band.
func settlingTime(series []models.Sample, target, duration float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !utils.WithinTolerance(series[i].ForceN, target, SettlingTolerance) {
			if i == len(series)-1 {
				return duration
			}
			return series[i].TimeS
		}
	}
	return 0
}
