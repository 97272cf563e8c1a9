package gripd

import (
	"fmt"
	"strings"

	"github.com/GripSim-25-26J-441/control-core/pkg/config"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

// ResolveTissue applies the surgeon's override to the classifier's
// detection. An empty or "auto" override keeps the detection; an empty
// detection falls back to Unknown.
func ResolveTissue(detected, override string) string {
	if override != "" && !strings.EqualFold(override, OverrideAuto) {
		return override
	}
	if detected == "" {
		return config.UnknownTissue
	}
	return detected
}

func formatGains(g models.PIDGains) string {
	return fmt.Sprintf("Kp=%g Ki=%g Kd=%g", g.Kp, g.Ki, g.Kd)
}

// BuildDecisionLog renders the human-readable explanation for a
// completed run: what was detected, what profile is in effect, how the
// gains changed, and how close the run came to the breaking point.
func BuildDecisionLog(res *RunResult, profile config.TissueProfile) string {
	var b strings.Builder

	if res.Detected != "" && res.Detected != res.Tissue {
		fmt.Fprintf(&b, "Override active: detected %s, surgeon selected %s.\n", res.Detected, res.Tissue)
	} else if res.Detected != "" {
		fmt.Fprintf(&b, "Detected tissue: %s.\n", res.Detected)
	}
	fmt.Fprintf(&b, "Profile in effect: %s (stiffness %g kPa, breaking point %g N).\n",
		profile.Name, profile.StiffnessKPa, profile.BreakingPointN)

	if res.Tuning != nil {
		fmt.Fprintf(&b, "Initial gains: %s.\n", formatGains(res.InitialGains))
		fmt.Fprintf(&b, "Tuned gains: %s (evaluated %d candidates).\n",
			formatGains(res.Tuning.BestGains), res.Tuning.Evaluated)
		if !res.Tuning.SafeFound {
			b.WriteString("WARNING: no fully safe candidate found within the budget; using the lowest-cost candidate.\n")
		}
	} else {
		fmt.Fprintf(&b, "Gains: %s.\n", formatGains(res.InitialGains))
	}

	run := res.Run
	fmt.Fprintf(&b, "Overshoot: %.3f N. Settling time: %.2f s.\n", run.OvershootN, run.SettlingS)
	fmt.Fprintf(&b, "Max force: %.3f N of %g N breaking point.\n", run.MaxForceN, profile.BreakingPointN)

	if run.Damage {
		fmt.Fprintf(&b, "TISSUE INJURY: force exceeded %g N at t=%.2f s.\n", profile.BreakingPointN, run.DamageTimeS)
	} else {
		b.WriteString("Safe operation: force stayed below the breaking point.\n")
	}

	return b.String()
}
