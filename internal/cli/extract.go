package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radsafe/doserisk/internal/extract"
	"github.com/radsafe/doserisk/internal/transpose"
)

// NewExtractCommand creates the extract command: parse and transpose one
// document and print its dose table without computing risk. Useful for
// checking what the extractor recognizes in a new simulation output layout.
func NewExtractCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Parse one simulation output file and print its dose table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ReadDocument(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "loading document", err)
			}

			ext, err := extract.Extract(doc.Content)
			if err != nil {
				return WrapExitError(ExitFailure, "extraction failed", err)
			}
			tr, err := transpose.Build(ext.Observations, nil)
			if err != nil {
				return WrapExitError(ExitFailure, "transposition failed", err)
			}

			w := cmd.OutOrStdout()
			if root.Format == "json" {
				type entryJSON struct {
					TimeHours float64 `json:"time_hours"`
					DoseSv    float64 `json:"dose_sv"`
				}
				table := make(map[string][]entryJSON)
				for _, organ := range tr.Table.Organs() {
					entries, _ := tr.Table.Series(organ)
					for _, e := range entries {
						table[string(organ)] = append(table[string(organ)], entryJSON{e.TimeHours, e.DoseSv})
					}
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"document":      doc.Name,
					"observations":  len(ext.Observations),
					"lines_skipped": ext.LinesSkipped,
					"table":         table,
				})
			}

			fmt.Fprintf(w, "%s: %d observation(s), %d line(s) skipped\n", doc.Name, len(ext.Observations), ext.LinesSkipped)
			for _, organ := range tr.Table.Organs() {
				entries, _ := tr.Table.Series(organ)
				total, _ := tr.Table.TotalDose(organ)
				fmt.Fprintf(w, "  %-14s total %.4e Sv over %d window(s)\n", organ, total, len(entries))
			}
			if root.Verbose {
				for _, d := range append(ext.Diagnostics, tr.Diagnostics...) {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", d)
				}
			}
			return nil
		},
	}
}
