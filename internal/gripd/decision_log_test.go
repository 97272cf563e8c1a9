package gripd

import (
	"strings"
	"testing"

	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

func TestResolveTissue(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		override string
		want     string
	}{
		{"no override keeps detection", "Intestine", "", "Intestine"},
		{"auto keeps detection", "Intestine", "auto", "Intestine"},
		{"auto is case-insensitive", "Intestine", "Auto", "Intestine"},
		{"override wins", "Intestine", "Liver", "Liver"},
		{"empty detection falls back", "", "", config.UnknownTissue},
		{"override without detection", "", "Bone", "Bone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTissue(tt.detected, tt.override); got != tt.want {
				t.Fatalf("ResolveTissue(%q, %q) = %q, want %q", tt.detected, tt.override, got, tt.want)
			}
		})
	}
}

func sampleRun(damage bool) *models.SimulationRun {
	return &models.SimulationRun{
		Gains:       models.PIDGains{Kp: 0.3, Ki: 0.05, Kd: 0.5},
		Tissue:      "Liver",
		TargetN:     3.0,
		Series:      []models.Sample{{TimeS: 0.01, ForceN: 0.1}},
		OvershootN:  0.25,
		SettlingS:   1.2,
		MaxForceN:   3.25,
		Damage:      damage,
		DamageTimeS: 0.8,
	}
}

func TestBuildDecisionLogOverride(t *testing.T) {
	profile := config.DefaultTable().LookupOrUnknown("Liver")
	res := &RunResult{
		Tissue:       "Liver",
		Detected:     "Intestine",
		InitialGains: models.PIDGains{Kp: 0.3, Ki: 0.05, Kd: 0.5},
		Run:          sampleRun(false),
	}

	log := BuildDecisionLog(res, profile)
	for _, want := range []string{
		"detected Intestine",
		"selected Liver",
		"breaking point 5 N",
		"Overshoot: 0.250 N",
		"Max force: 3.250 N of 5 N",
		"Safe operation",
	} {
		if !strings.Contains(log, want) {
			t.Fatalf("decision log missing %q:\n%s", want, log)
		}
	}
}

func TestBuildDecisionLogDamage(t *testing.T) {
	profile := config.DefaultTable().LookupOrUnknown("Liver")
	res := &RunResult{
		Tissue:       "Liver",
		Detected:     "Liver",
		InitialGains: models.PIDGains{Kp: 10},
		Run:          sampleRun(true),
	}

	log := BuildDecisionLog(res, profile)
	if !strings.Contains(log, "TISSUE INJURY") {
		t.Fatalf("expected injury warning:\n%s", log)
	}
	if strings.Contains(log, "Override active") {
		t.Fatalf("no override should be reported when detection matches:\n%s", log)
	}
}

func TestBuildDecisionLogTuning(t *testing.T) {
	profile := config.DefaultTable().LookupOrUnknown("Liver")
	res := &RunResult{
		Tissue:       "Liver",
		Detected:     "Liver",
		InitialGains: models.PIDGains{Kp: 0.8, Ki: 0.1, Kd: 2.5},
		Run:          sampleRun(false),
		Tuning: &models.TuningResult{
			BestGains: models.PIDGains{Kp: 0.5, Ki: 0.1, Kd: 1.0},
			Evaluated: 31,
			SafeFound: false,
		},
	}

	log := BuildDecisionLog(res, profile)
	for _, want := range []string{
		"Initial gains: Kp=0.8 Ki=0.1 Kd=2.5",
		"Tuned gains: Kp=0.5 Ki=0.1 Kd=1",
		"31 candidates",
		"no fully safe candidate",
	} {
		if !strings.Contains(log, want) {
			t.Fatalf("decision log missing %q:\n%s", want, log)
		}
	}
}
