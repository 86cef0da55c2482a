package cli

import (
	"time"

	"atsmatch/internal/common"
	"atsmatch/internal/errors"
	"atsmatch/internal/observability"
	"atsmatch/internal/textsource"
	"atsmatch/internal/types"
	"atsmatch/internal/watch"

	"github.com/spf13/cobra"
)

type watchOptions struct {
	debounce time.Duration
	maxRuns  float64
	burst    int
}

func newWatchCmd() *cobra.Command {
	var cc common.CommandConfig
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch [resume-file] [job-description-file]",
		Short: "Re-score the resume whenever either file changes",
		Long: `Analyze a resume against a job description, then keep watching both files
and print a fresh analysis after every change. Bursts of saves are debounced
and re-analysis is rate limited. Stop with Ctrl+C.

When observability.prometheus.enabled is set, metrics are served on
observability.prometheus.port while watching.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if arg == textsource.StdinName {
					return errors.NewValidationError(errors.ErrCodeInvalidRequest, "watch needs files, not standard input", nil)
				}
			}
			return resolveOutputFormat(cmd, &cc)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, cc, opts)
		},
	}

	addOutputFlags(cmd, &cc)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "Quiet period after a change before re-analysis (default from config)")
	cmd.Flags().Float64Var(&opts.maxRuns, "max-runs", 0, "Maximum re-analyses per second (default from config)")
	cmd.Flags().IntVar(&opts.burst, "burst", 0, "Re-analyses allowed in a burst (default from config)")
	return cmd
}

func (o watchOptions) resolve(cmd *cobra.Command, a *app) watch.Options {
	resolved := watch.Options{
		DebounceDelay:    a.cfg.Watch.DebounceDelay,
		MaxRunsPerSecond: a.cfg.Watch.MaxRunsPerSecond,
		Burst:            a.cfg.Watch.Burst,
		OnThrottled:      a.obs.RecordWatchThrottled,
	}
	if cmd.Flags().Changed("debounce") {
		resolved.DebounceDelay = o.debounce
	}
	if cmd.Flags().Changed("max-runs") {
		resolved.MaxRunsPerSecond = o.maxRuns
	}
	if cmd.Flags().Changed("burst") {
		resolved.Burst = o.burst
	}
	return resolved
}

func runWatch(cmd *cobra.Command, args []string, cc common.CommandConfig, opts watchOptions) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	resumePath, jobPath := args[0], args[1]
	loader := a.runner.Files.Loader()

	emit := func(result types.AnalysisResult) {
		if err := a.runner.Output.HandleOutput(result, cc); err != nil {
			a.logger.LogError(err, "Failed to write analysis")
		}
	}

	initial, err := watch.AnalyzeFiles(ctx, resumePath, jobPath, loader, a.analyze)
	if err != nil {
		return err
	}
	emit(initial)

	onChange := watch.Reanalyze(resumePath, jobPath, loader, a.analyze, emit, func(err error) {
		a.logger.LogError(err, "Re-analysis skipped")
	})
	w, err := watch.New([]string{resumePath, jobPath}, opts.resolve(cmd, a), onChange, a.logger)
	if err != nil {
		return err
	}

	if handler := a.obs.MetricsHandler(); handler != nil {
		if err := observability.StartPrometheusServer(ctx, handler, observability.GetPrometheusConfig(a.cfg), a.logger); err != nil {
			return err
		}
	}

	return w.Run(ctx)
}
