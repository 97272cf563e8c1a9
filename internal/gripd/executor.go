package gripd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GripSim-25-26J-441/control-core/internal/sim"
	"github.com/GripSim-25-26J-441/control-core/internal/tuning"
	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/logger"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
	ErrUnknownMode  = errors.New("unknown run mode")
)

// DefaultTuneBudget bounds a tuning run when the caller does not
// supply a budget; it covers the full standard grid.
const DefaultTuneBudget = 31

// RunExecutor executes runs asynchronously against the tissue table,
// with per-run cancellation.
type RunExecutor struct {
	store *RunStore
	table *config.TissueTable

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewRunExecutor creates an executor bound to a store and tissue table
func NewRunExecutor(store *RunStore, table *config.TissueTable) *RunExecutor {
	return &RunExecutor{
		store:   store,
		table:   table,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Table returns the executor's tissue table
func (e *RunExecutor) Table() *config.TissueTable {
	return e.table
}

// Start begins executing a run asynchronously.
// Returns the updated run record (running) or an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	if rec.Status == models.RunStatusRunning {
		return rec, nil
	}
	if rec.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	go e.execute(ctx, runID)
	return updated, nil
}

// Stop requests cancellation for a running run and marks it cancelled
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusCancelled, "")
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

// execute runs a record to completion and records its outcome
func (e *RunExecutor) execute(ctx context.Context, runID string) {
	defer e.cleanup(runID)

	rec, ok := e.store.Get(runID)
	if !ok {
		logger.Error("run not found", "run_id", runID)
		return
	}

	result, err := e.run(ctx, rec.Input)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("run cancelled", "run_id", runID)
			return
		}
		logger.Error("run failed", "run_id", runID, "error", err)
		if _, setErr := e.store.SetStatus(runID, models.RunStatusFailed, err.Error()); setErr != nil {
			logger.Error("failed to set failed status", "run_id", runID, "error", setErr)
		}
		return
	}

	if err := e.store.SetResult(runID, result); err != nil {
		logger.Error("failed to store result", "run_id", runID, "error", err)
		return
	}
	if _, err := e.store.SetStatus(runID, models.RunStatusCompleted, ""); err != nil {
		logger.Error("failed to set completed status", "run_id", runID, "error", err)
		return
	}

	logger.Info("run completed",
		"run_id", runID,
		"tissue", result.Tissue,
		"damage", result.Run.Damage,
		"max_force_n", result.Run.MaxForceN)
}

// run executes an input synchronously. It is the single entry point for
// both the async executor and the CLI.
func (e *RunExecutor) run(ctx context.Context, input *RunInput) (*RunResult, error) {
	tissueName := ResolveTissue(input.Detected, input.Override)
	profile := e.table.LookupOrUnknown(tissueName)

	gains := profile.DefaultGains
	if input.Gains != nil {
		gains = *input.Gains
	}

	duration := input.DurationS
	if duration <= 0 {
		duration = sim.DefaultDurationS
	}
	dt := input.DtS
	if dt <= 0 {
		dt = sim.DefaultDtS
	}

	result := &RunResult{
		Tissue:       profile.Name,
		Detected:     input.Detected,
		InitialGains: gains,
	}

	switch input.Mode {
	case ModeSimulate, "":
		run, err := sim.Simulate(sim.Input{
			Gains:     gains,
			Tissue:    profile,
			TargetN:   input.TargetN,
			Breathing: input.Breathing,
			DurationS: duration,
			DtS:       dt,
		})
		if err != nil {
			return nil, err
		}
		result.Run = run

	case ModeTune:
		budget := input.Budget
		if budget <= 0 {
			budget = DefaultTuneBudget
		}
		var source tuning.CandidateSource
		if input.Strategy == "perturbation" {
			source = tuning.NewPerturbationSource(input.Seed)
		} else {
			source = tuning.NewGridSource()
		}

		tuner := tuning.NewTuner(tuning.SafetyCost{}, source).WithWorkers(input.Workers)
		tuned, err := tuner.Tune(ctx, tuning.Input{
			Tissue:    profile,
			TargetN:   input.TargetN,
			Breathing: input.Breathing,
			Budget:    budget,
		})
		if err != nil {
			return nil, err
		}

		// Re-run the winner at full length for display, as the
		// candidate evaluations use the shorter tuning duration
		run, err := sim.Simulate(sim.Input{
			Gains:     tuned.BestGains,
			Tissue:    profile,
			TargetN:   input.TargetN,
			Breathing: input.Breathing,
			DurationS: duration,
			DtS:       dt,
		})
		if err != nil {
			return nil, err
		}
		result.Tuning = tuned
		result.Run = run

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, input.Mode)
	}

	result.Log = BuildDecisionLog(result, profile)
	return result, nil
}

// Run executes an input synchronously, outside the store lifecycle.
// Used by the CLI where there is no daemon.
func (e *RunExecutor) Run(ctx context.Context, input *RunInput) (*RunResult, error) {
	return e.run(ctx, input)
}
