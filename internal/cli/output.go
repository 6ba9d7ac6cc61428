package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/radsafe/doserisk/internal/pipeline"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // one or more documents failed
	ExitCommandError = 2 // command error (invalid paths, flags, parameter table)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// reportRow is one rendered output row: a computed cell, a per-document
// total, or a failed document marker.
type reportRow struct {
	Document string `json:"document"`
	Organ    string `json:"organ,omitempty"`
	Sex      string `json:"sex,omitempty"`
	Model    string `json:"model,omitempty"`
	DoseSv   string `json:"dose_sv,omitempty"`
	ERR      string `json:"err,omitempty"`
	LAR      string `json:"lar,omitempty"`
	Note     string `json:"note,omitempty"`
}

// buildRows flattens a batch result into the canonical tabular form: one row
// per (document, organ, sex) cell plus a total row per document; failed
// documents yield a single row with the failure reason.
func buildRows(batch *pipeline.BatchResult) []reportRow {
	var rows []reportRow
	for _, out := range batch.Outcomes {
		name := out.Document.Name
		if out.Failed() {
			rows = append(rows, reportRow{Document: name, Note: "FAILED: " + out.Err.Error()})
			continue
		}
		for _, res := range out.Report.Results {
			row := reportRow{
				Document: name,
				Organ:    string(res.Organ),
				Sex:      string(res.Sex),
				Model:    string(res.Model),
				DoseSv:   sci(res.DoseSv),
			}
			if res.Skipped {
				row.ERR = "N/A"
				row.LAR = "N/A"
				row.Note = res.SkipReason
			} else {
				row.ERR = sci(res.ERR)
				row.LAR = sci(res.LAR)
				if res.Clamped {
					row.Note = "clamped"
				}
			}
			rows = append(rows, row)
		}
		rows = append(rows, reportRow{
			Document: name,
			Organ:    "TOTAL",
			LAR:      sci(out.Report.Total()),
		})
	}
	return rows
}

// sci formats risk values the way the simulation tool's reports do.
func sci(v float64) string {
	return strconv.FormatFloat(v, 'e', 2, 64)
}

// renderBatch writes the batch result in the requested format. The verbose
// flag additionally emits the processing log to errW.
func renderBatch(w, errW io.Writer, batch *pipeline.BatchResult, format string, verbose bool) error {
	rows := buildRows(batch)

	switch format {
	case "json":
		payload := struct {
			RunID string              `json:"run_id"`
			Rows  []reportRow         `json:"rows"`
			Log   []pipeline.LogEntry `json:"log,omitempty"`
		}{RunID: batch.RunID, Rows: rows}
		if verbose {
			payload.Log = batch.Log
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)

	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"document", "organ", "sex", "model", "dose_sv", "err", "lar", "note"}); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write([]string{r.Document, r.Organ, r.Sex, r.Model, r.DoseSv, r.ERR, r.LAR, r.Note}); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}

	default: // text
		if batch.RunID != "" {
			fmt.Fprintf(w, "run %s\n", batch.RunID)
		}
		for _, r := range rows {
			switch {
			case r.Note != "" && r.Organ == "":
				fmt.Fprintf(w, "%-24s %s\n", r.Document, r.Note)
			case r.Organ == "TOTAL":
				fmt.Fprintf(w, "%-24s %-14s %42s\n", r.Document, "TOTAL", "LAR "+r.LAR)
			default:
				note := r.Note
				if note != "" {
					note = " (" + note + ")"
				}
				fmt.Fprintf(w, "%-24s %-14s %-7s %-8s dose %s  ERR %s  LAR %s%s\n",
					r.Document, r.Organ, r.Sex, r.Model, r.DoseSv, r.ERR, r.LAR, note)
			}
		}
	}

	if verbose && format != "json" {
		for _, e := range batch.Log {
			fmt.Fprintf(errW, "[%s] %s %s\n", e.Kind, e.Document, e.Message)
		}
	}
	return nil
}
