package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/radsafe/doserisk/internal/dose"
)

// Result is the outcome of extracting one document: the observations in
// document order plus every non-fatal finding recorded along the way.
type Result struct {
	Observations []dose.Observation
	Diagnostics  []dose.Diagnostic
	LinesSkipped int // lines matching no recognized pattern
}

var (
	// timeMarkerPattern matches the block opener, e.g.
	// "Time After Release        :   2,00 hours"
	timeMarkerPattern = regexp.MustCompile(`(?i)^\s*Time\s+After\s+Release\s*:\s*([^\s]+)\s*hours?\b`)

	// organCellPattern matches one dot-padded organ label with a bracketed
	// dose value. A line may carry several cells.
	organCellPattern = regexp.MustCompile(`([A-Za-z][A-Za-z ]*?)\s*\.{2,}\s*\[([^\]]*)\]`)

	// headerPattern matches metadata header lines ("Key : Value"). They are
	// recognized structure, so they do not count as skipped, but they carry
	// no dose data.
	headerPattern = regexp.MustCompile(`^\s*[A-Za-z][^:\[\]]*:\s*\S`)
)

// Extract parses one simulation output document.
//
// The returned error is non-nil only when the whole document is unusable
// (empty content or zero observations). All smaller problems are reported in
// Result.Diagnostics and the rest of the document is still used.
func Extract(content string) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &Error{Code: ErrCodeEmptyDocument, Message: "document content is empty"}
	}

	res := &Result{}
	currentTime := 0.0
	haveTime := false

	for i, line := range strings.Split(content, "\n") {
		lineNo := i + 1 // observations reference 1-based source lines

		if m := timeMarkerPattern.FindStringSubmatch(line); m != nil {
			t, err := dose.ParseNumber(m[1])
			if err != nil {
				res.Diagnostics = append(res.Diagnostics, dose.Diagnostic{
					Kind:    dose.DiagCellInvalid,
					Line:    lineNo,
					Message: fmt.Sprintf("unreadable time marker: %v", err),
				})
				haveTime = false
				continue
			}
			currentTime = t
			haveTime = true
			continue
		}

		cells := organCellPattern.FindAllStringSubmatch(line, -1)
		if cells == nil {
			if strings.TrimSpace(line) == "" || headerPattern.MatchString(line) {
				continue
			}
			res.LinesSkipped++
			res.Diagnostics = append(res.Diagnostics, dose.Diagnostic{
				Kind:    dose.DiagLineSkipped,
				Line:    lineNo,
				Message: "line matches no recognized pattern",
			})
			continue
		}

		if !haveTime {
			// Dose cells before any time marker cannot be placed in a
			// window; the whole line is unusable.
			res.LinesSkipped++
			res.Diagnostics = append(res.Diagnostics, dose.Diagnostic{
				Kind:    dose.DiagLineSkipped,
				Line:    lineNo,
				Message: "dose line outside any time-after-release block",
			})
			continue
		}

		for _, cell := range cells {
			organ := normalizeOrgan(cell[1])
			value, err := dose.ParseNumber(cell[2])
			if err != nil {
				// Per-cell failure: exclude the cell, keep the line.
				res.Diagnostics = append(res.Diagnostics, dose.Diagnostic{
					Kind:    dose.DiagCellInvalid,
					Line:    lineNo,
					Organ:   organ,
					Message: err.Error(),
				})
				continue
			}
			res.Observations = append(res.Observations, dose.Observation{
				Organ:     organ,
				TimeHours: currentTime,
				DoseSv:    value,
				Line:      lineNo,
			})
		}
	}

	if len(res.Observations) == 0 {
		return nil, &Error{Code: ErrCodeNoData, Message: "no usable dose data"}
	}
	return res, nil
}

// normalizeOrgan converts a printed organ label to its canonical form:
// trimmed, lowercased, inner spaces collapsed to underscores
// ("Red Marrow" -> "red_marrow").
func normalizeOrgan(label string) dose.Organ {
	fields := strings.Fields(strings.ToLower(label))
	return dose.Organ(strings.Join(fields, "_"))
}
