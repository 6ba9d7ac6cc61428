package risk

import (
	"fmt"

	"github.com/radsafe/doserisk/internal/dose"
	"github.com/radsafe/doserisk/internal/params"
)

// Input is one risk computation request: an organ's total dose plus the
// exposure scenario. Value object; validation happens in Compute.
type Input struct {
	Organ           dose.Organ
	DoseSv          float64
	AgeAtExposure   float64
	AgeAtAssessment float64
	Sex             dose.Sex
}

// Result is the outcome of one (organ, sex) cell.
type Result struct {
	Organ   dose.Organ `json:"organ"`
	Sex     dose.Sex   `json:"sex"`
	DoseSv  float64    `json:"dose_sv"`
	Model   dose.Model `json:"model"`
	ERR     float64    `json:"err"`
	LAR     float64    `json:"lar"`
	Equation string    `json:"equation,omitempty"` // symbolic form, for the audit log
	Clamped bool       `json:"clamped,omitempty"`  // formula went negative, clamped to zero
	Skipped bool       `json:"skipped,omitempty"`  // excluded from aggregation
	SkipReason string  `json:"skip_reason,omitempty"`
}

// Report is the per-document result set: one Result per (organ, sex) cell in
// dose-table order, plus aggregate lifetime attributable risk. Skipped cells
// appear in Results but contribute nothing to the totals.
type Report struct {
	Results  []Result                `json:"results"`
	TotalLAR map[dose.Sex]float64    `json:"total_lar"`
	// Failures records organs whose computation failed while the rest of the
	// document proceeded (missing coefficient entry).
	Failures []error `json:"-"`
}

// Total returns the document's total risk: the sum of per-cell LAR
// contributions across all computed organs and sexes.
func (r *Report) Total() float64 {
	var total float64
	for _, v := range r.TotalLAR {
		total += v
	}
	return total
}

// Calculator applies the models to dose-table entries. Immutable after New;
// safe for concurrent use because the parameter set is read-only.
type Calculator struct {
	set    *params.Set
	forced dose.Model // ModelNone means automatic selection
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithForcedModel bypasses dose-based model selection. The high-dose ceiling
// still applies; forcing a model does not extend its domain past 4 Sv.
func WithForcedModel(m dose.Model) Option {
	return func(c *Calculator) { c.forced = m }
}

// New creates a Calculator over a validated parameter set.
func New(set *params.Set, opts ...Option) *Calculator {
	c := &Calculator{set: set, forced: dose.ModelNone}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectModel applies the dose-magnitude selection rule. The threshold
// belongs to BEIR V: a dose of exactly dose.SelectionThresholdSv selects the
// high-dose model.
func SelectModel(doseSv float64) dose.Model {
	if doseSv >= dose.SelectionThresholdSv {
		return dose.ModelBEIRV
	}
	return dose.ModelBEIRVII
}

// Compute evaluates one cell.
//
// Fatal errors: invalid ages or negative dose (INPUT_INVALID), no coefficient
// entry for the organ (PARAMETER_MISSING). A sex the organ's model does not
// apply to, and doses beyond the high-dose ceiling, are modeled outcomes,
// not errors: the returned Result is marked Skipped with a diagnostic.
func (c *Calculator) Compute(in Input) (Result, []dose.Diagnostic, error) {
	if err := validateInput(in); err != nil {
		return Result{}, nil, err
	}

	cfg, ok := c.set.Config(in.Organ)
	if !ok {
		return Result{}, nil, &Error{
			Code:    ErrCodeParameterMissing,
			Organ:   in.Organ,
			Sex:     in.Sex,
			Message: "no coefficient entry in parameter table",
		}
	}

	res := Result{Organ: in.Organ, Sex: in.Sex, DoseSv: in.DoseSv, Model: dose.ModelNone}
	var diags []dose.Diagnostic

	if in.DoseSv > dose.HighDoseCeilingSv {
		res.Skipped = true
		res.SkipReason = string(dose.DiagHighDoseSkipped)
		diags = append(diags, dose.Diagnostic{
			Kind:    dose.DiagHighDoseSkipped,
			Organ:   in.Organ,
			Sex:     in.Sex,
			Message: fmt.Sprintf("dose %.3f Sv exceeds %.0f Sv model ceiling", in.DoseSv, dose.HighDoseCeilingSv),
		})
		return res, diags, nil
	}

	model := c.forced
	if model == dose.ModelNone {
		model = SelectModel(in.DoseSv)
	}

	var (
		excess  float64
		eq      string
		applies bool
	)
	switch model {
	case dose.ModelBEIRV:
		excess, eq, applies = beirV(cfg.BEIRV, in.Sex, in.DoseSv, in.AgeAtExposure, in.AgeAtAssessment)
	default:
		beta, betaOK := cfg.BEIRVII.Beta.For(in.Sex)
		applies = betaOK
		if betaOK {
			excess, eq = beirVII(cfg.BEIRVII, beta, in.DoseSv, in.AgeAtExposure, in.AgeAtAssessment)
		}
	}

	if !applies {
		res.Skipped = true
		res.SkipReason = string(dose.DiagSexNotApplicable)
		diags = append(diags, dose.Diagnostic{
			Kind:    dose.DiagSexNotApplicable,
			Organ:   in.Organ,
			Sex:     in.Sex,
			Message: "model carries no coefficient for this sex",
		})
		return res, diags, nil
	}

	if excess < 0 {
		diags = append(diags, dose.Diagnostic{
			Kind:    dose.DiagRiskClamped,
			Organ:   in.Organ,
			Sex:     in.Sex,
			Message: fmt.Sprintf("formula yielded %.4e, clamped to 0", excess),
		})
		excess = 0
		res.Clamped = true
	}

	baseline, _ := cfg.BaselineIncidence.For(in.Sex)
	res.Model = model
	res.ERR = excess
	res.LAR = excess * baseline
	res.Equation = eq
	return res, diags, nil
}

// Evaluate computes a full Report for one document's dose table.
//
// The error return is non-nil only for invalid ages, which poison every cell
// alike. Per-organ parameter failures land in Report.Failures and the rest
// of the document still computes, per the propagation policy.
func (c *Calculator) Evaluate(table *dose.Table, ageAtExposure, ageAtAssessment float64, sexes []dose.Sex) (*Report, []dose.Diagnostic, error) {
	if err := validateAges(ageAtExposure, ageAtAssessment); err != nil {
		return nil, nil, err
	}
	if len(sexes) == 0 {
		sexes = dose.BothSexes
	}

	report := &Report{TotalLAR: make(map[dose.Sex]float64, len(sexes))}
	var diags []dose.Diagnostic

	for _, organ := range table.Organs() {
		total, _ := table.TotalDose(organ)
		for _, sex := range sexes {
			res, cellDiags, err := c.Compute(Input{
				Organ:           organ,
				DoseSv:          total,
				AgeAtExposure:   ageAtExposure,
				AgeAtAssessment: ageAtAssessment,
				Sex:             sex,
			})
			diags = append(diags, cellDiags...)
			if err != nil {
				report.Failures = append(report.Failures, err)
				continue
			}
			report.Results = append(report.Results, res)
			if !res.Skipped {
				report.TotalLAR[sex] += res.LAR
			}
		}
	}
	return report, diags, nil
}

func validateInput(in Input) error {
	if err := validateAges(in.AgeAtExposure, in.AgeAtAssessment); err != nil {
		return err
	}
	if in.DoseSv < 0 {
		return &Error{
			Code:    ErrCodeInputInvalid,
			Organ:   in.Organ,
			Message: fmt.Sprintf("dose must be non-negative, got %g Sv", in.DoseSv),
		}
	}
	return nil
}

func validateAges(ageAtExposure, ageAtAssessment float64) error {
	if ageAtExposure < 0 {
		return &Error{
			Code:    ErrCodeInputInvalid,
			Message: fmt.Sprintf("age at exposure must be non-negative, got %g", ageAtExposure),
		}
	}
	if ageAtAssessment < ageAtExposure {
		return &Error{
			Code:    ErrCodeInputInvalid,
			Message: fmt.Sprintf("age at assessment (%g) must be >= age at exposure (%g)", ageAtAssessment, ageAtExposure),
		}
	}
	return nil
}
