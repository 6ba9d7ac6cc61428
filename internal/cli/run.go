package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/radsafe/doserisk/internal/dose"
	"github.com/radsafe/doserisk/internal/pipeline"
	"github.com/radsafe/doserisk/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	ExposureAge   float64
	AssessmentAge float64
	Sex           string // "male" | "female" | "" (both)
	Model         string // "auto" | "beir-v" | "beir-vii"
	DBPath        string // optional session store
	Workers       int
}

// NewRunCommand creates the run command: the full extract -> transpose ->
// compute pipeline over one or more simulation output files.
func NewRunCommand(root *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Process simulation output files into a risk report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, root, opts, args)
		},
	}

	cmd.Flags().Float64VarP(&opts.ExposureAge, "exposure-age", "e", 0, "age at exposure, years (required)")
	cmd.Flags().Float64VarP(&opts.AssessmentAge, "assessment-age", "a", 0, "age at assessment, years (required)")
	cmd.Flags().StringVar(&opts.Sex, "sex", "", "compute for one sex only (male|female), default both")
	cmd.Flags().StringVar(&opts.Model, "model", "auto", "force a model (auto|beir-v|beir-vii)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "persist results and dose tables to this SQLite file")
	cmd.Flags().IntVar(&opts.Workers, "workers", pipeline.DefaultWorkers, "documents processed in parallel")
	cmd.MarkFlagRequired("exposure-age")
	cmd.MarkFlagRequired("assessment-age")

	return cmd
}

func runRun(cmd *cobra.Command, root *RootOptions, opts *RunOptions, paths []string) error {
	p, err := batchParams(opts)
	if err != nil {
		return err
	}

	set, err := loadParams(root)
	if err != nil {
		return err
	}

	docs, err := ReadDocuments(paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading documents", err)
	}

	orchOpts := []pipeline.Option{pipeline.WithWorkers(opts.Workers)}
	if root.Verbose {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
		orchOpts = append(orchOpts, pipeline.WithRecorder(&pipeline.SlogRecorder{Logger: logger}))
	}
	orch := pipeline.New(set, orchOpts...)

	batch := orch.Process(cmd.Context(), docs, p)

	if opts.DBPath != "" {
		if err := saveBatch(cmd, opts.DBPath, orch, batch, p); err != nil {
			return err
		}
	}

	if err := renderBatch(cmd.OutOrStdout(), cmd.ErrOrStderr(), batch, root.Format, root.Verbose && root.Format != "text"); err != nil {
		return err
	}

	for _, out := range batch.Outcomes {
		if out.Failed() {
			return WrapExitError(ExitFailure, "one or more documents failed", nil)
		}
	}
	return nil
}

func saveBatch(cmd *cobra.Command, path string, orch *pipeline.Orchestrator, batch *pipeline.BatchResult, p pipeline.Params) error {
	db, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening session store", err)
	}
	defer db.Close()

	tables := make(map[string]*dose.Table, len(batch.Outcomes))
	for _, out := range batch.Outcomes {
		if t, ok := orch.CachedTable(out.Document.ID); ok {
			tables[out.Document.ID] = t
		}
	}
	if err := db.SaveBatch(cmd.Context(), batch, p, tables); err != nil {
		return WrapExitError(ExitCommandError, "persisting batch", err)
	}
	return nil
}

// batchParams converts flags to pipeline parameters.
func batchParams(opts *RunOptions) (pipeline.Params, error) {
	p := pipeline.Params{
		AgeAtExposure:   opts.ExposureAge,
		AgeAtAssessment: opts.AssessmentAge,
		ForcedModel:     dose.ModelNone,
	}

	if opts.Sex != "" {
		sex, err := dose.ParseSex(opts.Sex)
		if err != nil {
			return p, WrapExitError(ExitCommandError, "invalid --sex", err)
		}
		p.Sexes = []dose.Sex{sex}
	}

	switch opts.Model {
	case "", "auto":
	case "beir-v":
		p.ForcedModel = dose.ModelBEIRV
	case "beir-vii":
		p.ForcedModel = dose.ModelBEIRVII
	default:
		return p, WrapExitError(ExitCommandError,
			fmt.Sprintf("invalid --model %q: must be auto, beir-v or beir-vii", opts.Model), nil)
	}

	return p, nil
}
