// Package tuning searches PID gain space for the lowest-cost
// non-damaging controller for a tissue profile. Each candidate is
// scored by simulating a short run; every evaluated candidate that
// does not win is retained as a ghost curve.
package tuning

import (
	"context"
	"errors"
	"fmt"

	"github.com/GripSim-25-26J-441/control-core/internal/sim"
	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/logger"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

var (
	ErrNonPositiveBudget = errors.New("candidate budget must be positive")
	ErrNoCandidates      = errors.New("candidate source produced no candidates")
)

// Input configures one tuning invocation
type Input struct {
	Tissue    config.TissueProfile
	TargetN   float64
	Breathing models.Breathing
	Budget    int
	// DurationS is the per-candidate simulation length; zero selects
	// sim.TuningDurationS
	DurationS float64
}

// Tuner evaluates candidates from a source and keeps the cheapest.
// Safe for reuse across invocations.
type Tuner struct {
	cost    CostFunction
	source  CandidateSource
	workers int
}

// NewTuner creates a sequential tuner with the given cost function and
// candidate source. Nil arguments select SafetyCost and the grid source.
func NewTuner(cost CostFunction, source CandidateSource) *Tuner {
	if cost == nil {
		cost = SafetyCost{}
	}
	if source == nil {
		source = NewGridSource()
	}
	return &Tuner{cost: cost, source: source, workers: 1}
}

// WithWorkers sets the number of parallel evaluation workers.
// Results are identical to sequential evaluation regardless of worker
// count since every run is pure.
func (t *Tuner) WithWorkers(n int) *Tuner {
	if n < 1 {
		n = 1
	}
	t.workers = n
	return t
}

// candidateRun pairs an evaluated candidate with its cost, keeping the
// evaluation index for deterministic first-wins tie-breaking.
type candidateRun struct {
	index int
	run   *models.SimulationRun
	cost  float64
}

// Tune evaluates up to in.Budget candidates and returns the best one.
// A tuning pass that finds no non-damaging candidate is not an error:
// the result carries the least-bad candidate with SafeFound == false.
func (t *Tuner) Tune(ctx context.Context, in Input) (*models.TuningResult, error) {
	if in.Budget <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNonPositiveBudget, in.Budget)
	}
	duration := in.DurationS
	if duration <= 0 {
		duration = sim.TuningDurationS
	}

	candidates := t.source.Candidates(in.Tissue, in.Budget)
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	logger.Debug("tuning started",
		"tissue", in.Tissue.Name,
		"target_n", in.TargetN,
		"source", t.source.Name(),
		"candidates", len(candidates),
		"workers", t.workers)

	simInput := func(gains models.PIDGains) sim.Input {
		return sim.Input{
			Gains:     gains,
			Tissue:    in.Tissue,
			TargetN:   in.TargetN,
			Breathing: in.Breathing,
			DurationS: duration,
			DtS:       sim.DefaultDtS,
		}
	}

	var evaluated []candidateRun
	var err error
	if t.workers > 1 {
		evaluated, err = t.evaluateParallel(ctx, candidates, simInput)
	} else {
		evaluated, err = t.evaluateSequential(ctx, candidates, simInput)
	}
	if err != nil {
		return nil, err
	}

	return t.selectBest(evaluated), nil
}

// evaluateSequential runs candidates one after another, checking for
// cancellation between runs
func (t *Tuner) evaluateSequential(ctx context.Context, candidates []models.PIDGains, simInput func(models.PIDGains) sim.Input) ([]candidateRun, error) {
	out := make([]candidateRun, 0, len(candidates))
	for i, gains := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("tuning cancelled after %d candidates: %w", i, err)
		}
		run, err := sim.Simulate(simInput(gains))
		if err != nil {
			return nil, fmt.Errorf("candidate %d (kp=%g ki=%g kd=%g): %w", i, gains.Kp, gains.Ki, gains.Kd, err)
		}
		out = append(out, candidateRun{index: i, run: run, cost: t.cost.Evaluate(run)})
	}
	return out, nil
}

// selectBest picks the strictly-lowest-cost candidate, keeping the
// earlier one on ties, and collects the rest as rejected runs in
// evaluation order.
func (t *Tuner) selectBest(evaluated []candidateRun) *models.TuningResult {
	best := 0
	for i := 1; i < len(evaluated); i++ {
		if evaluated[i].cost < evaluated[best].cost {
			best = i
		}
	}

	rejected := make([]models.SimulationRun, 0, len(evaluated)-1)
	for i, cr := range evaluated {
		if i == best {
			continue
		}
		rejected = append(rejected, *cr.run)
	}

	result := &models.TuningResult{
		BestGains: evaluated[best].run.Gains,
		BestCost:  evaluated[best].cost,
		BestRun:   evaluated[best].run,
		Rejected:  rejected,
		Evaluated: len(evaluated),
		SafeFound: !evaluated[best].run.Damage,
	}

	if !result.SafeFound {
		logger.Warn("no safe candidate found within budget",
			"evaluated", result.Evaluated,
			"best_cost", result.BestCost,
			"best_max_force_n", result.BestRun.MaxForceN)
	} else {
		logger.Debug("tuning completed",
			"evaluated", result.Evaluated,
			"best_cost", result.BestCost,
			"best_kp", result.BestGains.Kp,
			"best_ki", result.BestGains.Ki,
			"best_kd", result.BestGains.Kd)
	}
	return result
}
