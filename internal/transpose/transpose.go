package transpose

import (
	"errors"
	"fmt"
	"sort"

	"github.com/radsafe/doserisk/internal/dose"
)

// Error is a fatal reshape error: the observations cannot form an
// unambiguous dose table.
type Error struct {
	Organ     dose.Organ
	TimeHours float64
	Lines     [2]int // source lines of the conflicting cells
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("RESHAPE_DUPLICATE: organ %s at t=%g h (lines %d and %d): %s",
		e.Organ, e.TimeHours, e.Lines[0], e.Lines[1], e.Message)
}

// IsAmbiguous reports whether err is a duplicate-cell reshape error.
func IsAmbiguous(err error) bool {
	var te *Error
	return errors.As(err, &te)
}

// Result carries the built table plus the findings recorded while building.
type Result struct {
	Table       *dose.Table
	Diagnostics []dose.Diagnostic
}

// Build pivots one document's observations into a dose.Table.
//
// declared lists organs that appeared in the document but may have lost all
// cells to extraction diagnostics; each one absent from the final table gets
// an ORGAN_OMITTED diagnostic rather than an error. Passing nil declares
// exactly the organs present in obs.
type cell struct {
	entry dose.Entry
	line  int
}

func Build(obs []dose.Observation, declared []dose.Organ) (*Result, error) {
	groups := make(map[dose.Organ][]cell)
	for _, o := range obs {
		groups[o.Organ] = append(groups[o.Organ], cell{
			entry: dose.Entry{TimeHours: o.TimeHours, DoseSv: o.DoseSv},
			line:  o.Line,
		})
	}

	res := &Result{}
	series := make(map[dose.Organ][]dose.Entry, len(groups))
	for organ, cells := range groups {
		// Stable sort keeps document order among equal time markers so the
		// duplicate check reports the first conflicting pair.
		sort.SliceStable(cells, func(i, j int) bool {
			return cells[i].entry.TimeHours < cells[j].entry.TimeHours
		})

		entries := make([]dose.Entry, 0, len(cells))
		for _, c := range cells {
			if n := len(entries); n > 0 && entries[n-1].TimeHours == c.entry.TimeHours {
				prev := entries[n-1]
				if prev.DoseSv == c.entry.DoseSv {
					res.Diagnostics = append(res.Diagnostics, dose.Diagnostic{
						Kind:    dose.DiagDuplicateCollapsed,
						Line:    c.line,
						Organ:   organ,
						Message: fmt.Sprintf("identical duplicate at t=%g h collapsed", c.entry.TimeHours),
					})
					continue
				}
				return nil, &Error{
					Organ:     organ,
					TimeHours: c.entry.TimeHours,
					Lines:     [2]int{firstLineAt(cells, c.entry.TimeHours), c.line},
					Message:   fmt.Sprintf("conflicting doses %g Sv and %g Sv", prev.DoseSv, c.entry.DoseSv),
				}
			}
			entries = append(entries, c.entry)
		}
		series[organ] = entries
	}

	for _, organ := range declared {
		if _, ok := series[organ]; !ok {
			res.Diagnostics = append(res.Diagnostics, dose.Diagnostic{
				Kind:    dose.DiagOrganOmitted,
				Organ:   organ,
				Message: "organ omitted: no usable data",
			})
		}
	}

	res.Table = dose.NewTable(series)
	return res, nil
}

func firstLineAt(cells []cell, t float64) int {
	for _, c := range cells {
		if c.entry.TimeHours == t {
			return c.line
		}
	}
	return 0
}
