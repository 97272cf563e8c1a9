package config

import (
	"sort"

	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

// TissueProfile holds the mechanical parameters of one tissue type.
// Profiles are immutable after loading.
type TissueProfile struct {
	Name           string          `yaml:"name" json:"name"`
	StiffnessKPa   float64         `yaml:"stiffness_kpa" json:"stiffness_kpa"`
	BreakingPointN float64         `yaml:"breaking_point_n" json:"breaking_point_n"`
	Friction       float64         `yaml:"friction" json:"friction"`
	DefaultGains   models.PIDGains `yaml:"default_gains" json:"default_gains"`
	MaxForceN      float64         `yaml:"max_force_n" json:"max_force_n"`
}

// TissueTable is the fixed tissue name -> profile mapping.
// Read-only after initialization; safe for concurrent lookups.
type TissueTable struct {
	profiles map[string]TissueProfile
}

// UnknownTissue is the fallback profile name used when classification
// fails or a name cannot be resolved.
const UnknownTissue = "Unknown"

// Lookup returns the profile for name
func (t *TissueTable) Lookup(name string) (TissueProfile, bool) {
	p, ok := t.profiles[name]
	return p, ok
}

// LookupOrUnknown returns the profile for name, falling back to the
// Unknown profile when the name is not in the table.
func (t *TissueTable) LookupOrUnknown(name string) TissueProfile {
	if p, ok := t.profiles[name]; ok {
		return p
	}
	return t.profiles[UnknownTissue]
}

// Names returns all profile names in sorted order
func (t *TissueTable) Names() []string {
	names := make([]string, 0, len(t.profiles))
	for name := range t.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profiles returns a copy of all profiles in name order
func (t *TissueTable) Profiles() []TissueProfile {
	names := t.Names()
	out := make([]TissueProfile, 0, len(names))
	for _, name := range names {
		out = append(out, t.profiles[name])
	}
	return out
}

// Len returns the number of profiles in the table
func (t *TissueTable) Len() int {
	return len(t.profiles)
}

// DefaultTable returns the builtin tissue profile table.
// Stiffness values are Young's-modulus equivalents in kPa; breaking
// points and max forces are in Newtons.
func DefaultTable() *TissueTable {
	return &TissueTable{profiles: map[string]TissueProfile{
		"Liver": {
			Name:           "Liver",
			StiffnessKPa:   6.0,
			BreakingPointN: 5.0,
			Friction:       0.2,
			DefaultGains:   models.PIDGains{Kp: 0.8, Ki: 0.1, Kd: 2.5},
			MaxForceN:      5.0,
		},
		"Intestine": {
			Name:           "Intestine",
			StiffnessKPa:   3.0,
			BreakingPointN: 2.0,
			Friction:       0.1,
			DefaultGains:   models.PIDGains{Kp: 0.3, Ki: 0.05, Kd: 0.5},
			MaxForceN:      2.0,
		},
		"Bone": {
			Name:           "Bone",
			StiffnessKPa:   1000.0,
			BreakingPointN: 20.0,
			Friction:       0.5,
			DefaultGains:   models.PIDGains{Kp: 2.0, Ki: 0.0, Kd: 0.1},
			MaxForceN:      20.0,
		},
		UnknownTissue: {
			Name:           UnknownTissue,
			StiffnessKPa:   50.0,
			BreakingPointN: 100.0,
			Friction:       0.3,
			DefaultGains:   models.PIDGains{Kp: 10.0, Ki: 0.1, Kd: 1.0},
			MaxForceN:      100.0,
		},
	}}
}
