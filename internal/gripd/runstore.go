package gripd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GripSim-25-26J-441/control-core/pkg/models"
	"github.com/GripSim-25-26J-441/control-core/pkg/utils"
)

// Run modes
const (
	ModeSimulate = "simulate"
	ModeTune     = "tune"
)

// OverrideAuto keeps the detected tissue (no surgeon override)
const OverrideAuto = "auto"

// RunInput is the caller-supplied description of a run. Zero values
// select defaults where documented.
type RunInput struct {
	// Mode is "simulate" (default) or "tune"
	Mode string `json:"mode,omitempty"`

	// Detected is the classifier's tissue hint; Override, when set and
	// not "auto", names the profile the surgeon forces instead
	Detected string `json:"detected,omitempty"`
	Override string `json:"override,omitempty"`

	// Gains override the effective profile's defaults when present
	Gains *models.PIDGains `json:"gains,omitempty"`

	TargetN   float64          `json:"target_n"`
	Breathing models.Breathing `json:"breathing"`

	// DurationS/DtS default to the simulator's standard values
	DurationS float64 `json:"duration_s,omitempty"`
	DtS       float64 `json:"dt_s,omitempty"`

	// Tune-mode settings
	Budget   int    `json:"budget,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Seed     int64  `json:"seed,omitempty"`
	Workers  int    `json:"workers,omitempty"`
}

// RunResult is what a completed run produced
type RunResult struct {
	// Tissue is the profile in effect after override resolution
	Tissue   string `json:"tissue"`
	Detected string `json:"detected"`

	// InitialGains are the gains before tuning (or the gains used, in
	// simulate mode)
	InitialGains models.PIDGains `json:"initial_gains"`

	// Run is the final simulation: the requested run in simulate mode,
	// the full-length run of the best gains in tune mode
	Run *models.SimulationRun `json:"run"`

	// Tuning is present in tune mode only
	Tuning *models.TuningResult `json:"tuning,omitempty"`

	// Log is the human-readable decision log for this run
	Log string `json:"log"`
}

// RunRecord tracks one run through its lifecycle
type RunRecord struct {
	ID              string           `json:"id"`
	Status          models.RunStatus `json:"status"`
	Input           *RunInput        `json:"input"`
	Result          *RunResult       `json:"result,omitempty"`
	Error           string           `json:"error,omitempty"`
	CreatedAtUnixMs int64            `json:"created_at_unix_ms"`
	StartedAtUnixMs int64            `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64            `json:"ended_at_unix_ms,omitempty"`
}

// RunStore holds run records in memory. Runs are retained only for
// display and ghost history; nothing is persisted.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

// NewRunStore creates an empty run store
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

// Create registers a new pending run. An empty runID gets a generated one.
func (s *RunStore) Create(runID string, input *RunInput) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("run already exists: %s", runID)
	}

	rec := &RunRecord{
		ID:              runID,
		Status:          models.RunStatusPending,
		Input:           input,
		CreatedAtUnixMs: nowUnixMs(),
	}
	s.runs[runID] = rec
	return rec, nil
}

// Get returns the record for runID
func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	return rec, ok
}

// List returns up to limit records, newest first
func (s *RunStore) List(limit int) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUnixMs != out[j].CreatedAtUnixMs {
			return out[i].CreatedAtUnixMs > out[j].CreatedAtUnixMs
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SetStatus transitions a run and stamps the lifecycle timestamps
func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	rec.Status = status
	if errMsg != "" {
		rec.Error = errMsg
	}

	switch status {
	case models.RunStatusRunning:
		if rec.StartedAtUnixMs == 0 {
			rec.StartedAtUnixMs = nowUnixMs()
		}
	case models.RunStatusCompleted, models.RunStatusFailed, models.RunStatusCancelled:
		rec.EndedAtUnixMs = nowUnixMs()
	}
	return rec, nil
}

// SetResult attaches the outcome of a completed run
func (s *RunStore) SetResult(runID string, result *RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	rec.Result = result
	return nil
}
