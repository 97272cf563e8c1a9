// Package sim runs fixed-step grip-force simulations: a PID controller
// from internal/control driving the tissue plant from internal/plant,
// producing an immutable SimulationRun.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/GripSim-25-26J-441/control-core/internal/control"
	"github.com/GripSim-25-26J-441/control-core/internal/plant"
	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

const (
	// DefaultDurationS is the standard run length for interactive simulation
	DefaultDurationS = 5.0
	// TuningDurationS is the shorter run length used while evaluating
	// tuning candidates
	TuningDurationS = 3.0
	// DefaultDtS is the integration time step
	DefaultDtS = 0.01

	// OutputHeadroom scales a profile's max force into the actuator
	// clamp, allowing transient overshoot of the nominal limit
	OutputHeadroom = 1.5

	// SettlingTolerance is the ±band around the target, as a fraction
	// of the target, that counts as settled
	SettlingTolerance = 0.05
)

var (
	ErrNonPositiveDuration = errors.New("duration must be positive")
	ErrNonPositiveDt       = errors.New("time step must be positive")
	ErrDtExceedsDuration   = errors.New("time step exceeds duration")
	ErrNegativeGains       = errors.New("PID gains must be non-negative")
	ErrNegativeTarget      = errors.New("target force cannot be negative")
	ErrMissingTissue       = errors.New("tissue profile is required")
)

// Input holds everything one simulation run needs. Duration and dt must
// be positive; callers wanting the standard values use the Default
// constants.
type Input struct {
	Gains     models.PIDGains
	Tissue    config.TissueProfile
	TargetN   float64
	Breathing models.Breathing
	DurationS float64
	DtS       float64
}

// Validate checks the input, failing fast before any stepping happens
func (in *Input) Validate() error {
	if in.Tissue.Name == "" {
		return ErrMissingTissue
	}
	if !in.Gains.Valid() {
		return fmt.Errorf("%w: got kp=%g ki=%g kd=%g", ErrNegativeGains, in.Gains.Kp, in.Gains.Ki, in.Gains.Kd)
	}
	if in.TargetN < 0 {
		return fmt.Errorf("%w: got %g", ErrNegativeTarget, in.TargetN)
	}
	if in.DurationS <= 0 {
		return fmt.Errorf("%w: got %g", ErrNonPositiveDuration, in.DurationS)
	}
	if in.DtS <= 0 {
		return fmt.Errorf("%w: got %g", ErrNonPositiveDt, in.DtS)
	}
	if in.DtS > in.DurationS {
		return fmt.Errorf("%w: dt=%g duration=%g", ErrDtExceedsDuration, in.DtS, in.DurationS)
	}
	return nil
}

// Simulate runs one grip simulation to completion. It is pure and
// deterministic: identical inputs produce identical series. No partial
// run is produced on invalid input.
func Simulate(in Input) (*models.SimulationRun, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	maxOutput := in.Tissue.MaxForceN * OutputHeadroom
	// Anti-windup: bound the integral so its contribution cannot exceed
	// the actuator limit on its own
	integralMax := math.Inf(1)
	if in.Gains.Ki > 0 {
		integralMax = maxOutput / in.Gains.Ki
	}
	pid := control.NewPID(in.Gains, in.TargetN, 0, maxOutput, integralMax)
	gripper := plant.NewGripper(in.Tissue, in.Breathing)

	steps := int(in.DurationS / in.DtS)
	series := make([]models.Sample, 0, steps)

	t := 0.0
	for i := 0; i < steps; i++ {
		t += in.DtS
		ctl, _ := pid.Step(gripper.Grip(), in.DtS)
		grip := gripper.Step(ctl, in.DtS, t)
		series = append(series, models.Sample{TimeS: t, ForceN: grip})
	}

	run := &models.SimulationRun{
		Gains:     in.Gains,
		Tissue:    in.Tissue.Name,
		TargetN:   in.TargetN,
		Breathing: in.Breathing,
		Series:    series,
		DurationS: in.DurationS,
		DtS:       in.DtS,
	}
	applyMetrics(run, in.Tissue.BreakingPointN)
	return run, nil
}
