package models

// RunStatus represents the lifecycle status of a run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// PIDGains holds the three controller gains. All values are non-negative.
type PIDGains struct {
	Kp float64 `json:"kp" yaml:"kp"`
	Ki float64 `json:"ki" yaml:"ki"`
	Kd float64 `json:"kd" yaml:"kd"`
}

// Valid reports whether all gains are non-negative
func (g PIDGains) Valid() bool {
	return g.Kp >= 0 && g.Ki >= 0 && g.Kd >= 0
}

// Sample is one point of a force-vs-time series
type Sample struct {
	TimeS  float64 `json:"time_s"`
	ForceN float64 `json:"force_n"`
}

// Breathing configures the sinusoidal organ-motion perturbation.
// Amplitude is a base displacement in plant units; PeriodS defaults to 4s.
type Breathing struct {
	Enabled   bool    `json:"enabled"`
	Amplitude float64 `json:"amplitude,omitempty"`
	PeriodS   float64 `json:"period_s,omitempty"`
}

// SimulationRun is the immutable outcome of one simulation.
// Series is non-empty and strictly increasing in time; Damage is true
// iff some sample's force exceeded the tissue's breaking point.
type SimulationRun struct {
	Gains        PIDGains  `json:"gains"`
	Tissue       string    `json:"tissue"`
	TargetN      float64   `json:"target_n"`
	Breathing    Breathing `json:"breathing"`
	Series       []Sample  `json:"series"`
	OvershootN   float64   `json:"overshoot_n"`
	SettlingS    float64   `json:"settling_s"`
	MaxForceN    float64   `json:"max_force_n"`
	Damage       bool      `json:"damage"`
	DamageTimeS  float64   `json:"damage_time_s,omitempty"`
	DurationS    float64   `json:"duration_s"`
	DtS          float64   `json:"dt_s"`
}

// TuningResult is the outcome of one auto-tuning invocation.
// Rejected holds every evaluated candidate that did not win, in
// evaluation order (the ghost curves). SafeFound is false when no
// non-damaging candidate existed within the budget; BestRun is then
// the lowest-cost candidate anyway.
type TuningResult struct {
	BestGains PIDGains        `json:"best_gains"`
	BestCost  float64         `json:"best_cost"`
	BestRun   *SimulationRun  `json:"best_run"`
	Rejected  []SimulationRun `json:"rejected,omitempty"`
	Evaluated int             `json:"evaluated"`
	SafeFound bool            `json:"safe_found"`
}
