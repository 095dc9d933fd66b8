package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rsanders/scoped-search/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the scoped-search CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scoped-search",
		Short: "Compile free-text search queries into predicate lists",
		Long: `scoped-search turns a free-text search query into an ordered list of
conditions (value, operator) that a storage layer can apply as filters.

Plain words and quoted phrases become like/not conditions, "a OR b" pairs
become or conditions, and dates in MM/DD/YYYY, YYYYMMDD or YYYY-MM-DD form
become as-of, comparison or range conditions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			// Diagnostics go to stderr so they never mix with command output.
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			log, err := logger.New(cmd.ErrOrStderr(), logger.Config{Level: level, Format: "text"})
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to create logger", err)
			}
			cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./scoped-search.yaml)")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewTokensCommand(opts))
	cmd.AddCommand(NewPatternsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
