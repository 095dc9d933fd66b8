package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rsanders/scoped-search/internal/batch"
	"github.com/rsanders/scoped-search/internal/config"
	"github.com/rsanders/scoped-search/internal/logger"
	"github.com/rsanders/scoped-search/internal/transport/rest"
)

// ServeOptions holds flags for the serve command. The values are read
// through config.Load, which binds them over file and environment settings.
type ServeOptions struct {
	*RootOptions
	Addr      string
	LogLevel  string
	LogFormat string
	Workers   int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parser over HTTP",
		Long: `Start the HTTP API.

Endpoints:
  GET  /v1/parse?q=...    parse one query (missing q = absent input)
  POST /v1/parse          {"query": "..."}
  POST /v1/parse/batch    {"queries": ["...", null, ...]}
  GET  /v1/patterns       pattern registry
  GET  /healthz           liveness
  GET  /metrics           Prometheus metrics

Settings come from flags, SCOPED_SEARCH_* environment variables and
scoped-search.yaml, in that order of precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", defaults.Server.Addr, "listen address")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", defaults.Log.Level, "log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.LogFormat, "log-format", defaults.Log.Format, "log format (text|json)")
	cmd.Flags().IntVar(&opts.Workers, "workers", defaults.Batch.Workers, "batch workers (0 = number of CPUs)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath, cmd.Flags())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.LoggerConfig())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create logger", err)
	}

	bp, err := batch.New(cfg.Batch.Workers, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start workers", err)
	}
	defer func() { _ = bp.Close() }()

	srv, err := rest.NewServer(rest.Options{
		Batch:           bp,
		Logger:          log,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		MaxBatchQueries: cfg.Batch.MaxQueries,
		RateLimit:       cfg.Server.RateLimit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create server", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rest.Serve(ctx, cfg.Server, srv.Handler(), log); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}
