package dose

import (
	"fmt"
	"slices"
)

// Organ identifies a simulation target organ. Values are the canonical
// lowercase snake_case labels the simulation tool prints (e.g. "red_marrow");
// the parameter table maps each one to the epidemiological organ whose
// coefficients apply.
type Organ string

// Canonical organ labels emitted by the simulation tool's dose tables.
const (
	OrganSkin        Organ = "skin"
	OrganSurfaceBone Organ = "surface_bone"
	OrganSpleen      Organ = "spleen"
	OrganBreast      Organ = "breast"
	OrganULIWall     Organ = "uli_wall"
	OrganThymus      Organ = "thymus"
	OrganKidneys     Organ = "kidneys"
	OrganPancreas    Organ = "pancreas"
	OrganLung        Organ = "lung"
	OrganRedMarrow   Organ = "red_marrow"
	OrganOvaries     Organ = "ovaries"
	OrganStomachWall Organ = "stomach_wall"
	OrganLLIWall     Organ = "lli_wall"
	OrganEsophagus   Organ = "esophagus"
	OrganTestes      Organ = "testes"
	OrganBrain       Organ = "brain"
	OrganThyroid     Organ = "thyroid"
	OrganLiver       Organ = "liver"
	OrganAdrenals    Organ = "adrenals"
	OrganSIWall      Organ = "si_wall"
	OrganBladderWall Organ = "bladder_wall"
	OrganMuscle      Organ = "muscle"
	OrganUterus      Organ = "uterus"
)

// KnownOrgans lists every canonical organ label in the order the simulation
// tool prints them. The parameter table is validated against this list at
// load time.
var KnownOrgans = []Organ{
	OrganSkin, OrganSurfaceBone, OrganSpleen, OrganBreast, OrganULIWall,
	OrganThymus, OrganKidneys, OrganPancreas, OrganLung, OrganRedMarrow,
	OrganOvaries, OrganStomachWall, OrganLLIWall, OrganEsophagus,
	OrganTestes, OrganBrain, OrganThyroid, OrganLiver, OrganAdrenals,
	OrganSIWall, OrganBladderWall, OrganMuscle, OrganUterus,
}

// Sex selects the coefficient column in the parameter tables.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// BothSexes is the default computation set when the caller does not filter.
var BothSexes = []Sex{Male, Female}

// ParseSex converts a user-supplied string to a Sex.
func ParseSex(s string) (Sex, error) {
	switch s {
	case "male", "M", "m":
		return Male, nil
	case "female", "F", "f":
		return Female, nil
	}
	return "", fmt.Errorf("invalid sex %q: must be male or female", s)
}

// Model identifies the epidemiological model applied to one organ's dose.
type Model string

const (
	// ModelBEIRVII is the low-dose model (doses below SelectionThresholdSv).
	ModelBEIRVII Model = "BEIR_VII"
	// ModelBEIRV is the high-dose model (doses at or above SelectionThresholdSv).
	ModelBEIRV Model = "BEIR_V"
	// ModelNone marks cells that neither model computed (missing coefficient
	// for the sex, or dose beyond HighDoseCeilingSv).
	ModelNone Model = "N/A"
)

// SelectionThresholdSv is the dose at which model selection switches from
// BEIR VII to BEIR V. The boundary belongs to BEIR V: a dose of exactly
// 0.1 Sv (100 mSv) is computed with the high-dose model.
const SelectionThresholdSv = 0.1

// HighDoseCeilingSv is the upper bound of both models' domain of
// applicability. Doses above it are flagged and skipped, not computed.
const HighDoseCeilingSv = 4.0

// Observation is one raw dose reading extracted from a simulation document.
// Immutable once produced by the extractor.
type Observation struct {
	Organ     Organ   // canonical organ label
	TimeHours float64 // time marker: hours after release for this dose window
	DoseSv    float64 // windowed equivalent dose in sievert
	Line      int     // 1-based source line, for diagnostics in later stages
}

// Entry is one (time marker, dose) pair within an organ's series.
type Entry struct {
	TimeHours float64
	DoseSv    float64
}

// Table is the organ-indexed, time-ordered dose table for one document.
// Built once by the transposer; read-only afterward.
//
// Invariants:
//   - every organ present has at least one entry
//   - entries within an organ are strictly increasing and unique in TimeHours
type Table struct {
	doses map[Organ][]Entry
}

// NewTable builds a Table from already-grouped, already-ordered series.
// The transposer is the only intended constructor; it owns the invariant
// checks. The series map is copied so later caller mutation cannot leak in.
func NewTable(series map[Organ][]Entry) *Table {
	doses := make(map[Organ][]Entry, len(series))
	for organ, entries := range series {
		if len(entries) == 0 {
			continue
		}
		cp := make([]Entry, len(entries))
		copy(cp, entries)
		doses[organ] = cp
	}
	return &Table{doses: doses}
}

// Organs returns the organs present, in KnownOrgans order. Organs outside the
// canonical list (future simulation versions) sort after it alphabetically.
func (t *Table) Organs() []Organ {
	present := make(map[Organ]bool, len(t.doses))
	for organ := range t.doses {
		present[organ] = true
	}
	out := make([]Organ, 0, len(t.doses))
	for _, organ := range KnownOrgans {
		if present[organ] {
			out = append(out, organ)
			delete(present, organ)
		}
	}
	rest := make([]Organ, 0, len(present))
	for organ := range present {
		rest = append(rest, organ)
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// Series returns the time-ordered entries for one organ. The second return
// is false when the organ is absent. Callers must not mutate the slice.
func (t *Table) Series(organ Organ) ([]Entry, bool) {
	entries, ok := t.doses[organ]
	return entries, ok
}

// TotalDose returns the organ's total relevant dose: the sum of its windowed
// doses across all time markers. This is the input dose for risk computation.
func (t *Table) TotalDose(organ Organ) (float64, bool) {
	entries, ok := t.doses[organ]
	if !ok {
		return 0, false
	}
	var total float64
	for _, e := range entries {
		total += e.DoseSv
	}
	return total, true
}

// Len returns the number of organs present.
func (t *Table) Len() int { return len(t.doses) }
