package risk

import (
	"fmt"
	"math"

	"github.com/radsafe/doserisk/internal/dose"
	"github.com/radsafe/doserisk/internal/params"
)

// beirV evaluates the BEIR V excess relative risk for one cell. The 1990
// report defines no unified master equation; each organ group carries its own
// piecewise model. ok is false when the model does not apply to the sex.
func beirV(cfg params.VConfig, sex dose.Sex, doseSv, ageAtExposure, ageAtAssessment float64) (value float64, eq string, ok bool) {
	t := ageAtAssessment - ageAtExposure

	switch cfg.ModelType {
	case params.VLeukemiaQ:
		beta, inWindow := leukemiaBeta(cfg.TimeWindows, ageAtExposure, t)
		if !inWindow {
			return 0, "ERR = 0 (leukemia risk window exceeded)", true
		}
		eq = fmt.Sprintf("ERR = (%.3f*D + %.3f*D^2) * exp(%.3f)", cfg.Alpha2, cfg.Alpha3, beta)
		return (cfg.Alpha2*doseSv + cfg.Alpha3*doseSv*doseSv) * math.Exp(beta), eq, true

	case params.VBreast:
		if sex != dose.Female {
			return 0, "", false
		}
		coef := cfg.DefaultCoef
		for _, b := range cfg.AgeBrackets {
			if ageAtExposure < b.MaxAge {
				coef = b.Coef
				break
			}
		}
		eq = fmt.Sprintf("ERR = %g * %g * D", coef, cfg.Scale)
		return coef * cfg.Scale * doseSv, eq, true

	case params.VThyroid:
		coef := cfg.CoefAdult
		if ageAtExposure < cfg.ThresholdAge {
			coef = cfg.CoefYoung
		}
		eq = fmt.Sprintf("ERR = %g * D", coef)
		return coef * doseSv, eq, true

	default: // params.VLinear
		coef, applies := cfg.Coef.For(sex)
		if !applies {
			return 0, "", false
		}
		eq = fmt.Sprintf("ERR = %g * D", coef)
		return coef * doseSv, eq, true
	}
}

// leukemiaBeta resolves the time-window exponent of the BEIR V leukemia
// model. Window edges are inclusive on the upper bound, matching the
// report's tables: an exposure age of exactly 20 falls in the young block,
// a time since exposure of exactly 15 years in the first interval.
func leukemiaBeta(windows []params.TimeWindow, ageAtExposure, t float64) (float64, bool) {
	for _, w := range windows {
		if ageAtExposure > w.MaxExposureAge {
			continue
		}
		for _, iv := range w.Intervals {
			if t <= iv.MaxYearsSince {
				return iv.Beta, true
			}
		}
		return 0, false // past the last interval of the applicable block
	}
	return 0, false
}
