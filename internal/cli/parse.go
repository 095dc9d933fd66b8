package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rsanders/scoped-search/internal/batch"
	"github.com/rsanders/scoped-search/internal/config"
	"github.com/rsanders/scoped-search/internal/ir"
	"github.com/rsanders/scoped-search/internal/logger"
	"github.com/rsanders/scoped-search/internal/parser"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	File    string // one query per line; "-" reads stdin
	Workers int
}

// ParseOutput is the result for one query.
type ParseOutput struct {
	Query       *string       `json:"query"`
	Conditions  ir.Conditions `json:"conditions"`
	Fingerprint string        `json:"fingerprint"`
	Truncated   bool          `json:"truncated"`
}

// ParseOutputs is the result of parse --file.
type ParseOutputs []ParseOutput

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse [query]",
		Short: "Compile a query into conditions",
		Long: `Compile a search query into its ordered condition list.

Without a query argument the input is treated as absent and the result is
an empty list. With --file, every line of the file is parsed as a separate
query ("-" reads standard input).

Examples:
  scoped-search parse 'cats -"big dogs" >=2024-01-01'
  scoped-search parse --format json '01/01/2024 TO 12/31/2024'
  scoped-search parse --file queries.txt`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read one query per line from file (- for stdin)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel workers for --file (0 = number of CPUs)")

	return cmd
}

func runParse(opts *ParseOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.File == "" {
		var query *string
		if len(args) == 1 {
			query = &args[0]
		}
		out, err := parseOne(logger.FromContext(cmd.Context()), query)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to fingerprint conditions", err)
		}
		return formatter.Success(out)
	}

	if len(args) > 0 {
		return NewExitError(ExitCommandError, "a query argument cannot be combined with --file")
	}

	queries, err := readQueries(opts.File, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeReadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read queries", err)
	}
	formatter.VerboseLog("Parsing %d queries from %s", len(queries), opts.File)

	cfg, err := config.Load(opts.ConfigPath, cmd.Flags())
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	bp, err := batch.New(cfg.Batch.Workers, logger.FromContext(cmd.Context()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start workers", err)
	}
	defer func() { _ = bp.Close() }()

	ptrs := make([]*string, len(queries))
	for i := range queries {
		ptrs[i] = &queries[i]
	}
	results, err := bp.ParseAll(cmd.Context(), ptrs)
	if err != nil {
		return WrapExitError(ExitFailure, "batch parse interrupted", err)
	}

	outs := make(ParseOutputs, len(results))
	for i, r := range results {
		outs[i] = ParseOutput{
			Query:       ptrs[i],
			Conditions:  r.Conditions,
			Fingerprint: r.Fingerprint,
			Truncated:   r.Truncated,
		}
	}
	return formatter.Success(outs)
}

func parseOne(log *slog.Logger, query *string) (ParseOutput, error) {
	a := parser.Analyze(query)
	logAnalysis(log, a)
	fp, err := ir.Fingerprint(a.Conditions)
	if err != nil {
		return ParseOutput{}, err
	}
	return ParseOutput{Query: query, Conditions: a.Conditions, Fingerprint: fp, Truncated: a.Truncated}, nil
}

// logAnalysis reports the lexer and classifier outcome at debug level.
func logAnalysis(log *slog.Logger, a parser.Analysis) {
	if a.Truncated {
		log.Debug("query truncated",
			slog.Int("max_length", parser.MaxQueryLength),
			slog.String("kept", a.Query))
	}
	log.Debug("query parsed",
		slog.Bool("absent", a.Absent),
		slog.Int("tokens", len(a.Tokens)),
		slog.Int("conditions", len(a.Conditions)),
		slog.Bool("truncated", a.Truncated))
}

// readQueries returns the lines of path, or of stdin when path is "-".
func readQueries(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open query file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var queries []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		queries = append(queries, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return queries, nil
}

func (o ParseOutput) renderText(w io.Writer) error {
	if o.Query == nil {
		fmt.Fprintln(w, "query: <absent>")
	} else {
		fmt.Fprintf(w, "query: %q\n", *o.Query)
	}
	if o.Truncated {
		fmt.Fprintf(w, "truncated to %d characters\n", parser.MaxQueryLength)
	}

	if len(o.Conditions) == 0 {
		fmt.Fprintln(w, "no conditions")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for i, c := range o.Conditions {
			fmt.Fprintf(tw, "  %d.\t%s\t%s\n", i+1, c.Operator, c.Value)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "fingerprint: %s\n", o.Fingerprint)
	return err
}

func (outs ParseOutputs) renderText(w io.Writer) error {
	for i, o := range outs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := o.renderText(w); err != nil {
			return err
		}
	}
	return nil
}
