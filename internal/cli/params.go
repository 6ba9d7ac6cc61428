package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radsafe/doserisk/internal/params"
)

// NewParamsCommand creates the params command group for inspecting and
// validating coefficient tables.
func NewParamsCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Inspect and validate BEIR coefficient tables",
	}
	cmd.AddCommand(newParamsValidateCommand())
	cmd.AddCommand(newParamsShowCommand(root))
	return cmd
}

func newParamsValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an external coefficient table without running anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := params.LoadFile(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "parameter table invalid", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d organ(s), version %s\n", len(set.Organs()), set.Metadata.Version)
			return nil
		},
	}
}

func newParamsShowCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the organs and models of the active coefficient table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := loadParams(root)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "version %s (%s)\n", set.Metadata.Version, set.Metadata.Source)
			for _, organ := range set.Organs() {
				cfg, _ := set.Config(organ)
				fmt.Fprintf(w, "  %-14s vii=%-9s v=%-22s equivalence=%s\n",
					organ, cfg.BEIRVII.ModelType, cfg.BEIRV.ModelType, cfg.Equivalence)
			}
			return nil
		},
	}
}
