package params

import (
	"github.com/radsafe/doserisk/internal/dose"
)

// Set is the loaded, validated coefficient table: one OrganConfig per
// simulation organ. Read-only after Load.
type Set struct {
	Metadata Metadata
	configs  map[dose.Organ]OrganConfig
}

// Metadata describes the provenance of the coefficient table.
type Metadata struct {
	Version string `yaml:"version"`
	Source  string `yaml:"source"`
}

// Config returns the configuration for one organ.
func (s *Set) Config(organ dose.Organ) (OrganConfig, bool) {
	c, ok := s.configs[organ]
	return c, ok
}

// Organs returns every configured organ, in dose.KnownOrgans order.
func (s *Set) Organs() []dose.Organ {
	out := make([]dose.Organ, 0, len(s.configs))
	for _, organ := range dose.KnownOrgans {
		if _, ok := s.configs[organ]; ok {
			out = append(out, organ)
		}
	}
	return out
}

// OrganConfig holds everything needed to compute one organ's risk under
// either model.
type OrganConfig struct {
	// Equivalence names the epidemiological site whose published
	// coefficients this organ uses (e.g. uli_wall -> colon). Reporting
	// metadata only; the coefficients themselves are stored inline.
	Equivalence string `yaml:"equivalence"`

	// BaselineIncidence is the sex-specific lifetime baseline incidence the
	// LAR projection multiplies against.
	BaselineIncidence SexValue `yaml:"baseline_incidence"`

	BEIRVII VIIConfig `yaml:"beir_vii"`
	BEIRV   VConfig   `yaml:"beir_v"`
}

// SexValue is a coefficient that may differ by sex or be absent for one
// (breast in males, testes in females). A nil side means the model does not
// apply to that sex.
type SexValue struct {
	Male   *float64 `yaml:"male"`
	Female *float64 `yaml:"female"`
}

// For returns the value for the given sex. ok is false when the model does
// not apply to that sex.
func (v SexValue) For(sex dose.Sex) (float64, bool) {
	var p *float64
	if sex == dose.Male {
		p = v.Male
	} else {
		p = v.Female
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// VIIModelType selects the BEIR VII formula family.
type VIIModelType string

const (
	VIISolid    VIIModelType = "solid"
	VIILeukemia VIIModelType = "leukemia"
)

// VIIConfig holds the BEIR VII coefficients for one organ.
type VIIConfig struct {
	ModelType VIIModelType `yaml:"model_type"`
	// Latency is the minimum years between exposure and any excess risk.
	Latency float64 `yaml:"latency"`
	// DDREF is the dose and dose-rate effectiveness factor; applied to
	// solid-cancer estimates only.
	DDREF float64  `yaml:"ddref"`
	Beta  SexValue `yaml:"beta"`
	Gamma float64  `yaml:"gamma"`
	Eta   float64  `yaml:"eta"`
	// Theta, Delta and Phi parameterize the leukemia formula; zero and
	// unused for solid organs.
	Theta float64 `yaml:"theta"`
	Delta float64 `yaml:"delta"`
	Phi   float64 `yaml:"phi"`
}

// VModelType selects the BEIR V formula family.
type VModelType string

const (
	VLinear    VModelType = "linear"
	VBreast    VModelType = "breast_age_dependent"
	VThyroid   VModelType = "thyroid_age_dependent"
	VLeukemiaQ VModelType = "leukemia_lq"
)

// VConfig holds the BEIR V coefficients for one organ. Only the fields for
// the configured ModelType are populated.
type VConfig struct {
	ModelType VModelType `yaml:"model_type"`

	// linear
	Coef SexValue `yaml:"coef"`

	// breast_age_dependent
	Scale       float64      `yaml:"scale"`
	AgeBrackets []AgeBracket `yaml:"age_brackets"`
	DefaultCoef float64      `yaml:"default_coef"`

	// thyroid_age_dependent
	ThresholdAge float64 `yaml:"threshold_age"`
	CoefYoung    float64 `yaml:"coef_young"`
	CoefAdult    float64 `yaml:"coef_adult"`

	// leukemia_lq
	Alpha2      float64      `yaml:"alpha2"`
	Alpha3      float64      `yaml:"alpha3"`
	TimeWindows []TimeWindow `yaml:"time_windows"`
}

// AgeBracket maps an exposure-age band to a breast-model coefficient.
// Bands are half-open: exposure age strictly below MaxAge; first match wins.
type AgeBracket struct {
	MaxAge float64 `yaml:"max_age"`
	Coef   float64 `yaml:"coef"`
}

// TimeWindow is one exposure-age block of the BEIR V leukemia model. The
// block applies when exposure age is at or below MaxExposureAge (inclusive,
// per the report's tables); within it, the first interval whose
// MaxYearsSince is >= time since exposure supplies the exponent.
type TimeWindow struct {
	MaxExposureAge float64    `yaml:"max_exposure_age"`
	Intervals      []Interval `yaml:"intervals"`
}

// Interval maps a time-since-exposure band (inclusive upper bound) to the
// beta exponent of the leukemia formula.
type Interval struct {
	MaxYearsSince float64 `yaml:"max_years_since"`
	Beta          float64 `yaml:"beta"`
}
