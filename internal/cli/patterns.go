package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rsanders/scoped-search/internal/ir"
	"github.com/rsanders/scoped-search/internal/parser"
)

// PatternOutput describes one registry category.
type PatternOutput struct {
	Priority int         `json:"priority"`
	Name     string      `json:"name"`
	Operator ir.Operator `json:"operator,omitempty"`
	Pattern  string      `json:"pattern"`
}

// PatternsOutput lists the registry in priority order.
type PatternsOutput struct {
	GrammarVersion string          `json:"grammar_version"`
	Categories     []PatternOutput `json:"categories"`
	verbose        bool
}

// NewPatternsCommand creates the patterns command.
func NewPatternsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the pattern registry in priority order",
		Long: `List the lexical categories the scanner tries, highest priority first.
When two categories could match at the same position the earlier one wins.
Use --verbose to include the regular expressions.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := parser.Categories()
			out := PatternsOutput{
				GrammarVersion: ir.GrammarVersion,
				Categories:     make([]PatternOutput, len(cats)),
				verbose:        rootOpts.Verbose,
			}
			for i, c := range cats {
				out.Categories[i] = PatternOutput{Priority: i + 1, Name: c.Name, Operator: c.Operator, Pattern: c.Pattern}
			}
			return newFormatter(rootOpts, cmd).Success(out)
		},
	}

	return cmd
}

func (o PatternsOutput) renderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCATEGORY\tOPERATOR")
	for _, c := range o.Categories {
		op := string(c.Operator)
		if op == "" {
			op = "like/not"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.Priority, c.Name, op)
		if o.verbose {
			fmt.Fprintf(tw, "\t  %s\t\n", c.Pattern)
		}
	}
	return tw.Flush()
}
