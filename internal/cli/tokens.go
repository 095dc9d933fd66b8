package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rsanders/scoped-search/internal/logger"
	"github.com/rsanders/scoped-search/internal/parser"
)

// TokenOutput is one lexer token.
type TokenOutput struct {
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	Category string `json:"category,omitempty"`
}

// TokensOutput is the lexer output for a query.
type TokensOutput struct {
	Query     string        `json:"query"`
	Truncated bool          `json:"truncated"`
	Tokens    []TokenOutput `json:"tokens"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens <query>",
		Short: "Show the lexer token stream for a query",
		Long: `Show the tokens the lexer produces before classification: cleaned
literals with the registry category that matched them, and the negation
markers emitted for matches that began with '-'.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := parser.Analyze(&args[0])
			logAnalysis(logger.FromContext(cmd.Context()), a)
			out := TokensOutput{Query: a.Query, Truncated: a.Truncated, Tokens: make([]TokenOutput, len(a.Tokens))}
			for i, tok := range a.Tokens {
				out.Tokens[i] = TokenOutput{Kind: tok.Kind.String(), Text: tok.Text, Category: tok.Category}
			}
			return newFormatter(rootOpts, cmd).Success(out)
		},
	}

	return cmd
}

func (o TokensOutput) renderText(w io.Writer) error {
	if len(o.Tokens) == 0 {
		_, err := fmt.Fprintln(w, "no tokens")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, tok := range o.Tokens {
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\n", i+1, tok.Kind, tok.Category, tok.Text)
	}
	return tw.Flush()
}
