package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rsanders/scoped-search/internal/ir"
)

// VersionOutput reports the binary and grammar versions.
type VersionOutput struct {
	Version        string `json:"version"`
	GrammarVersion string `json:"grammar_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newFormatter(rootOpts, cmd).Success(VersionOutput{
				Version:        ir.Version,
				GrammarVersion: ir.GrammarVersion,
			})
		},
	}
}

func (v VersionOutput) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "scoped-search %s (grammar %s)\n", v.Version, v.GrammarVersion)
	return err
}
