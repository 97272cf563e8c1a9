// Package plant models the gripper jaw pressing on a tissue sample as
// a mass-spring-damper system. The tissue acts as the spring; its
// constant is derived from the profile's Young's-modulus-equivalent
// stiffness. Breathing shifts the tissue base sinusoidally.
package plant

import (
	"math"

	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

const (
	// JawMass is the effective mass of the gripper jaw in kg
	JawMass = 0.5
	// ViscousDamping is the baseline damping coefficient of the jaw
	ViscousDamping = 2.0
	// StiffnessScale converts profile stiffness (kPa equivalent) to a
	// spring constant in N per displacement unit
	StiffnessScale = 10.0

	// DefaultBreathingAmplitude is the tissue base displacement under
	// breathing, roughly 2mm in plant units
	DefaultBreathingAmplitude = 0.2
	// DefaultBreathingPeriodS approximates a resting respiratory cycle
	DefaultBreathingPeriodS = 4.0
)

// Gripper is the simulated plant. Not safe for concurrent use; each
// simulation run owns its own instance.
type Gripper struct {
	springK   float64
	damping   float64
	breathing models.Breathing

	position float64
	velocity float64
	grip     float64
}

// NewGripper creates a plant for the given tissue profile. The tissue
// friction contributes additional viscous drag on top of the jaw's own
// damping.
func NewGripper(profile config.TissueProfile, breathing models.Breathing) *Gripper {
	if breathing.Enabled {
		if breathing.Amplitude <= 0 {
			breathing.Amplitude = DefaultBreathingAmplitude
		}
		if breathing.PeriodS <= 0 {
			breathing.PeriodS = DefaultBreathingPeriodS
		}
	}
	return &Gripper{
		springK:   profile.StiffnessKPa * StiffnessScale,
		damping:   ViscousDamping + profile.Friction,
		breathing: breathing,
	}
}

// BasePerturbation returns the tissue base displacement at time t
func (g *Gripper) BasePerturbation(t float64) float64 {
	if !g.breathing.Enabled {
		return 0
	}
	return g.breathing.Amplitude * math.Sin(2*math.Pi*t/g.breathing.PeriodS)
}

// Step advances the plant by dt seconds under the given actuator force
// and returns the measured grip force (the tissue's reaction force,
// which is what the force sensor reads). t is the simulation time at
// the end of the step.
func (g *Gripper) Step(actuatorForce, dt, t float64) float64 {
	base := g.BasePerturbation(t)
	springForce := g.springK * (g.position - base)

	accel := (actuatorForce - g.damping*g.velocity - springForce) / JawMass

	g.velocity += accel * dt
	g.position += g.velocity * dt
	// The jaw cannot pass through its open stop
	if g.position < 0 {
		g.position = 0
	}

	g.grip = math.Max(0, springForce)
	return g.grip
}

// Grip returns the last measured grip force
func (g *Gripper) Grip() float64 {
	return g.grip
}

// Position returns the jaw displacement
func (g *Gripper) Position() float64 {
	return g.position
}

// Velocity returns the jaw velocity
func (g *Gripper) Velocity() float64 {
	return g.velocity
}
