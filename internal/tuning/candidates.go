package tuning

import (
	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
	"github.com/GripSim-25-26J-441/control-core/pkg/utils"
)

// CandidateSource generates gain candidates for a tissue profile.
// Sources may generate fewer candidates than the budget; the tuner
// never evaluates more than budget of them.
type CandidateSource interface {
	// Candidates returns up to budget gain triples for the profile,
	// in evaluation order
	Candidates(profile config.TissueProfile, budget int) []models.PIDGains

	// Name returns the name of the generation strategy
	Name() string
}

// GridSource walks a coarse Kp × Kd grid with a fixed Ki, starting
// from the profile's default gains so the baseline is always evaluated
// first.
type GridSource struct {
	KpValues []float64
	KdValues []float64
	FixedKi  float64
}

// NewGridSource creates the standard coarse grid
func NewGridSource() *GridSource {
	return &GridSource{
		KpValues: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		KdValues: []float64{0.0, 0.1, 0.5, 1.0, 2.0},
		FixedKi:  0.1,
	}
}

func (s *GridSource) Name() string {
	return "grid"
}

func (s *GridSource) Candidates(profile config.TissueProfile, budget int) []models.PIDGains {
	if budget <= 0 {
		return nil
	}
	out := make([]models.PIDGains, 0, budget)
	out = append(out, profile.DefaultGains)

	for _, kp := range s.KpValues {
		for _, kd := range s.KdValues {
			if len(out) >= budget {
				return out
			}
			out = append(out, models.PIDGains{Kp: kp, Ki: s.FixedKi, Kd: kd})
		}
	}
	return out
}

// PerturbationSource samples random multiplicative perturbations
// around the profile's default gains. Seeded, so a given seed always
// produces the same candidates.
type PerturbationSource struct {
	Seed int64
	// Spread is the maximum multiplicative factor applied to each
	// default gain; candidates land in [default/Spread, default*Spread]
	Spread float64
}

// NewPerturbationSource creates a perturbation source with the given seed
func NewPerturbationSource(seed int64) *PerturbationSource {
	return &PerturbationSource{Seed: seed, Spread: 4.0}
}

func (s *PerturbationSource) Name() string {
	return "perturbation"
}

func (s *PerturbationSource) Candidates(profile config.TissueProfile, budget int) []models.PIDGains {
	if budget <= 0 {
		return nil
	}
	spread := s.Spread
	if spread <= 1 {
		spread = 4.0
	}
	rng := utils.NewRandSource(s.Seed)

	out := make([]models.PIDGains, 0, budget)
	out = append(out, profile.DefaultGains)

	for len(out) < budget {
		out = append(out, models.PIDGains{
			Kp: perturb(rng, profile.DefaultGains.Kp, spread),
			Ki: perturb(rng, profile.DefaultGains.Ki, spread),
			Kd: perturb(rng, profile.DefaultGains.Kd, spread),
		})
	}
	return out
}

// perturb scales a gain by a random factor in [1/spread, spread].
// Zero gains get a small absolute jitter instead so the search does
// not stay pinned at zero.
func perturb(rng *utils.RandSource, gain, spread float64) float64 {
	if gain == 0 {
		return rng.UniformFloat64(0, 0.1)
	}
	return gain * rng.UniformFloat64(1/spread, spread)
}
