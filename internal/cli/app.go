package cli

import (
	"context"
	"time"

	"atsmatch/internal/ats"
	"atsmatch/internal/common"
	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/formatters"
	"atsmatch/internal/observability"
	"atsmatch/internal/rewrite"
	"atsmatch/internal/session"
	"atsmatch/internal/store"
	"atsmatch/internal/textsource"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

// app holds the collaborators one command invocation needs. The store is
// opened lazily so read-only commands never touch disk.
type app struct {
	cfg      *config.Config
	logger   *errors.Logger
	obs      *observability.ObservabilityManager
	runner   *common.Runner
	analyzer *ats.Analyzer

	store    store.Store
	workflow *session.Workflow
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		logger.LogError(err, "Observability disabled")
		om = observability.Disabled()
	}

	loader := textsource.NewLoader(cfg.App.MaxFileSize, logger)
	loader.Stdin = cmd.InOrStdin()
	runner := common.NewRunner(loader, logger)
	runner.Output.WithStdout(cmd.OutOrStdout())

	return &app{
		cfg:      cfg,
		logger:   logger,
		obs:      om,
		runner:   runner,
		analyzer: ats.NewAnalyzer(),
	}, nil
}

// openWorkflow opens the configured store and builds the session workflow.
func (a *app) openWorkflow(ctx context.Context) (*session.Workflow, error) {
	if a.workflow != nil {
		return a.workflow, nil
	}

	s, err := store.Open(ctx, store.Options{
		Driver:        a.cfg.Store.Driver,
		Path:          a.cfg.Store.Path,
		BusyTimeoutMs: int(a.cfg.Store.BusyTimeout.Milliseconds()),
	})
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Session store opened", "driver", a.cfg.Store.Driver, "path", a.cfg.Store.Path)

	a.store = store.WithObserver(s, a.obs)
	a.workflow = session.NewWorkflow(
		store.NewSession(a.store),
		a.analyzer,
		session.WithRewriter(rewrite.Rewriter{SkillsLimit: a.cfg.Rewrite.SkillsLimit}),
		session.WithTracer(a.obs),
		session.WithLogger(a.logger),
	)
	return a.workflow, nil
}

// analyze scores texts without touching the store.
func (a *app) analyze(ctx context.Context, resumeText, jobText string) types.AnalysisResult {
	return a.obs.TraceAnalysis(ctx, session.OperationAnalyze, func() types.AnalysisResult {
		return a.analyzer.Analyze(resumeText, jobText)
	})
}

// close releases the store and flushes telemetry.
func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.LogError(err, "Failed to close session store")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.obs.Shutdown(ctx); err != nil {
		a.logger.LogError(err, "Failed to flush telemetry")
	}
}

// addOutputFlags registers --output and --format on cmd.
func addOutputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.SupportedFormats(cfg.App.SupportedFormats, formatters.GlobalRegistry), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveOutputFormat applies the default format and validates the result.
func resolveOutputFormat(cmd *cobra.Command, cc *common.CommandConfig) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	if cc.OutputFormat == "" {
		cc.OutputFormat = cfg.App.DefaultFormat
	}
	return common.ValidateOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats, formatters.GlobalRegistry)
}

// outputPreRun is a PreRunE that resolves cc's format.
func outputPreRun(cc *common.CommandConfig) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(cmd, cc)
	}
}
