package dose

import "fmt"

// DiagnosticKind categorizes non-fatal findings recorded while a document
// moves through the pipeline. Partial success is a first-class state: each
// stage returns its diagnostics as values alongside its output.
type DiagnosticKind string

const (
	// DiagLineSkipped marks a line that matched no recognized pattern.
	DiagLineSkipped DiagnosticKind = "LINE_SKIPPED"

	// DiagCellInvalid marks a recognized line whose numeric cell failed to
	// parse; the cell is excluded, the rest of the line is kept.
	DiagCellInvalid DiagnosticKind = "CELL_INVALID"

	// DiagDuplicateCollapsed marks identical duplicate (organ, time) cells
	// collapsed during transposition.
	DiagDuplicateCollapsed DiagnosticKind = "DUPLICATE_COLLAPSED"

	// DiagOrganOmitted marks an organ dropped from the dose table because no
	// valid cell survived extraction.
	DiagOrganOmitted DiagnosticKind = "ORGAN_OMITTED"

	// DiagRiskClamped marks a formula result clamped to zero. The models are
	// biological risk models, not arbitrary real-valued functions.
	DiagRiskClamped DiagnosticKind = "RISK_CLAMPED"

	// DiagHighDoseSkipped marks a cell whose dose exceeds HighDoseCeilingSv
	// and was excluded from computation and aggregation.
	DiagHighDoseSkipped DiagnosticKind = "HIGH_DOSE_SKIPPED"

	// DiagSexNotApplicable marks a cell skipped because the parameter table
	// carries no coefficient for the sex (breast in males, testes in
	// females, and so on).
	DiagSexNotApplicable DiagnosticKind = "SEX_NOT_APPLICABLE"
)

// Diagnostic is one recorded finding. Zero values for Line, Organ and Sex
// mean "not applicable to this finding".
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int
	Organ   Organ
	Sex     Sex
	Message string
}

func (d Diagnostic) String() string {
	switch {
	case d.Line > 0 && d.Organ != "":
		return fmt.Sprintf("%s: line %d, organ %s: %s", d.Kind, d.Line, d.Organ, d.Message)
	case d.Line > 0:
		return fmt.Sprintf("%s: line %d: %s", d.Kind, d.Line, d.Message)
	case d.Organ != "" && d.Sex != "":
		return fmt.Sprintf("%s: organ %s (%s): %s", d.Kind, d.Organ, d.Sex, d.Message)
	case d.Organ != "":
		return fmt.Sprintf("%s: organ %s: %s", d.Kind, d.Organ, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}
