// Package safety classifies simulated forces against a tissue's
// breaking point into display bands.
package safety

// Band is a color-coded safety classification for a force sample
type Band string

const (
	// BandSafe covers forces comfortably below the breaking point
	BandSafe Band = "green"
	// BandWarning covers forces approaching the breaking point
	BandWarning Band = "orange"
	// BandDanger covers forces exceeding the breaking point
	BandDanger Band = "red"
)

// DefaultWarnFraction is the fraction of the breaking point at which
// the warning band begins
const DefaultWarnFraction = 0.6

// Thresholds evaluates forces against a tissue's breaking point.
// The warning band starts at WarnFraction of the breaking point.
type Thresholds struct {
	BreakingPointN float64
	WarnFraction   float64
}

// NewThresholds builds thresholds for a breaking point. A non-positive
// warnFraction selects the default.
func NewThresholds(breakingPointN, warnFraction float64) Thresholds {
	if warnFraction <= 0 || warnFraction >= 1 {
		warnFraction = DefaultWarnFraction
	}
	return Thresholds{
		BreakingPointN: breakingPointN,
		WarnFraction:   warnFraction,
	}
}

// WarnLevelN returns the force at which the warning band begins
func (t Thresholds) WarnLevelN() float64 {
	return t.BreakingPointN * t.WarnFraction
}

// Classify maps a force to its safety band
func (t Thresholds) Classify(forceN float64) Band {
	switch {
	case forceN > t.BreakingPointN:
		return BandDanger
	case forceN > t.WarnLevelN():
		return BandWarning
	default:
		return BandSafe
	}
}
