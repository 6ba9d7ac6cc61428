package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "csv" | "json"
	ParamsFile string // external coefficient table; empty uses the embedded one
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "csv", "json"}

// NewRootCommand creates the root command for the doserisk CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "doserisk",
		Short: "doserisk - dose-to-risk estimation from dispersion simulation output",
		Long: "Converts radiological-dispersion simulation output into organ-specific\n" +
			"lifetime cancer-risk estimates using the BEIR V and BEIR VII models.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (full processing log)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|csv|json)")
	cmd.PersistentFlags().StringVar(&opts.ParamsFile, "params", "", "path to an external BEIR coefficient table (YAML)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewRecalcCommand(opts))
	cmd.AddCommand(NewExtractCommand(opts))
	cmd.AddCommand(NewParamsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
