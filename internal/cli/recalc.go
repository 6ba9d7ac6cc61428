package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radsafe/doserisk/internal/dose"
	"github.com/radsafe/doserisk/internal/pipeline"
	"github.com/radsafe/doserisk/internal/risk"
	"github.com/radsafe/doserisk/internal/store"
)

// NewRecalcCommand creates the recalc command: recompute risk for an already
// processed document from its cached dose table, under new ages, without
// re-parsing the source file.
func NewRecalcCommand(root *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "recalc <document-name>",
		Short: "Recompute risk for a stored document under different ages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecalc(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().Float64VarP(&opts.ExposureAge, "exposure-age", "e", 0, "age at exposure, years (required)")
	cmd.Flags().Float64VarP(&opts.AssessmentAge, "assessment-age", "a", 0, "age at assessment, years (required)")
	cmd.Flags().StringVar(&opts.Sex, "sex", "", "compute for one sex only (male|female), default both")
	cmd.Flags().StringVar(&opts.Model, "model", "auto", "force a model (auto|beir-v|beir-vii)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "session store to read the cached dose table from (required)")
	cmd.MarkFlagRequired("exposure-age")
	cmd.MarkFlagRequired("assessment-age")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runRecalc(cmd *cobra.Command, root *RootOptions, opts *RunOptions, name string) error {
	p, err := batchParams(opts)
	if err != nil {
		return err
	}

	set, err := loadParams(root)
	if err != nil {
		return err
	}

	db, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening session store", err)
	}
	defer db.Close()

	docID, found, err := db.FindDocument(cmd.Context(), name)
	if err != nil {
		return WrapExitError(ExitCommandError, "resolving document", err)
	}
	if !found {
		return WrapExitError(ExitCommandError, fmt.Sprintf("no stored run mentions document %q", name), nil)
	}

	table, ok, err := db.LoadTable(cmd.Context(), docID)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading cached dose table", err)
	}
	if !ok {
		return WrapExitError(ExitCommandError, fmt.Sprintf("document %q has no cached dose table (its parse failed)", name), nil)
	}

	var calcOpts []risk.Option
	if p.ForcedModel != dose.ModelNone {
		calcOpts = append(calcOpts, risk.WithForcedModel(p.ForcedModel))
	}
	calc := risk.New(set, calcOpts...)

	report, _, err := calc.Evaluate(table, p.AgeAtExposure, p.AgeAtAssessment, p.Sexes)
	if err != nil {
		return WrapExitError(ExitFailure, "risk computation failed", err)
	}

	// Render through the same tabular path as run, as a one-document batch.
	batch := &pipeline.BatchResult{
		Outcomes: []pipeline.Outcome{{
			Document: pipeline.Document{ID: docID, Name: name},
			Report:   report,
		}},
	}
	return renderBatch(cmd.OutOrStdout(), cmd.ErrOrStderr(), batch, root.Format, false)
}
