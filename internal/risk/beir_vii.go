package risk

import (
	"fmt"
	"math"

	"github.com/radsafe/doserisk/internal/params"
)

// eStar is the BEIR VII age-centering convention for exposure age: decades
// below age 30, zero from 30 on.
func eStar(ageAtExposure float64) float64 {
	if ageAtExposure < 30 {
		return (ageAtExposure - 30) / 10
	}
	return 0
}

// beirVII evaluates the BEIR VII excess relative risk for one cell.
// beta is the already-resolved sex-specific coefficient. The equation string
// is the symbolic form recorded in the audit log.
func beirVII(cfg params.VIIConfig, beta, doseSv, ageAtExposure, ageAtAssessment float64) (float64, string) {
	t := ageAtAssessment - ageAtExposure
	if t < cfg.Latency {
		return 0, fmt.Sprintf("ERR = 0 (time since exposure %.1f y below latency %.0f y)", t, cfg.Latency)
	}
	es := eStar(ageAtExposure)

	if cfg.ModelType == params.VIILeukemia {
		// Linear-quadratic dose response with a log-time modifier; the
		// quadratic theta term already carries the low-dose curvature, so no
		// DDREF applies.
		if t <= 0 {
			return 0, "ERR = 0 (no time elapsed since exposure)"
		}
		eq := "ERR = beta * D * (1 + theta*D) * exp(gamma*e_star + delta*ln(t/25) + phi*e_star*ln(t/25))"
		logT := math.Log(t / 25)
		exponent := cfg.Gamma*es + cfg.Delta*logT + cfg.Phi*es*logT
		return beta * doseSv * (1 + cfg.Theta*doseSv) * math.Exp(exponent), eq
	}

	eq := "ERR = beta * D * exp(gamma*e_star) * (a/60)^eta / DDREF"
	ageTerm := math.Pow(ageAtAssessment/60, cfg.Eta)
	return beta * doseSv * math.Exp(cfg.Gamma*es) * ageTerm / cfg.DDREF, eq
}
