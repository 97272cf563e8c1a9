// Package control implements the PID feedback controller driving the
// gripper actuator.
package control

import (
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
	"github.com/GripSim-25-26J-441/control-core/pkg/utils"
)

// PID is a discrete PID controller with output clamping and integral
// anti-windup. Time is advanced explicitly via the dt argument so runs
// are reproducible.
type PID struct {
	gains    models.PIDGains
	setpoint float64

	minOutput   float64
	maxOutput   float64
	integralMax float64

	integral  float64
	prevError float64
	firstStep bool
}

// Terms exposes the individual PID components of the last step for
// logging and inspection.
type Terms struct {
	P     float64
	I     float64
	D     float64
	Error float64
}

// NewPID creates a controller for the given gains and setpoint.
// Output is clamped to [minOutput, maxOutput]; the integral term is
// clamped to ±integralMax.
func NewPID(gains models.PIDGains, setpoint, minOutput, maxOutput, integralMax float64) *PID {
	return &PID{
		gains:       gains,
		setpoint:    setpoint,
		minOutput:   minOutput,
		maxOutput:   maxOutput,
		integralMax: integralMax,
		firstStep:   true,
	}
}

// Step computes the control output for one time step of size dt given
// the current measurement. The derivative term is skipped on the first
// step since there is no previous error.
func (p *PID) Step(measurement, dt float64) (float64, Terms) {
	err := p.setpoint - measurement

	p.integral = utils.Clamp(p.integral+err*dt, -p.integralMax, p.integralMax)

	var derivative float64
	if !p.firstStep && dt > 0 {
		derivative = (err - p.prevError) / dt
	}

	proportional := p.gains.Kp * err
	integralTerm := p.gains.Ki * p.integral
	derivativeTerm := p.gains.Kd * derivative

	output := utils.Clamp(proportional+integralTerm+derivativeTerm, p.minOutput, p.maxOutput)

	p.prevError = err
	p.firstStep = false

	return output, Terms{
		P:     proportional,
		I:     integralTerm,
		D:     derivativeTerm,
		Error: err,
	}
}

// Reset clears the controller state
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
	p.firstStep = true
}

// Setpoint returns the controller's target value
func (p *PID) Setpoint() float64 {
	return p.setpoint
}

// Gains returns the controller's gains
func (p *PID) Gains() models.PIDGains {
	return p.gains
}
