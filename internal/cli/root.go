package cli

import (
	"context"
	"fmt"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// flagBindings maps config keys to the persistent flags that override them.
var flagBindings = map[string]string{
	"app.logLevel": "log-level",
	"store.driver": "store-driver",
	"store.path":   "store-path",
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "atsmatch",
		Short: "Score a resume against a job description the way an ATS would",
		Long: `atsmatch compares a resume with a job description using keyword extraction
and a weighted ATS score. It lists matched and missing keywords, suggests
improvements and can rewrite the resume with stronger wording.

The upload, job, results, improve and clear commands walk through a session
kept in a local store, so each step can be run separately.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return reloadConfig(cmd, configFile)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default: search /etc/atsmatch, $HOME/.atsmatch and .)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("store-driver", "", "Session store driver: sqlite or memory")
	pf.String("store-path", "", "SQLite session database path")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newKeywordsCmd(),
		newUploadCmd(),
		newJobCmd(),
		newResultsCmd(),
		newPreviewCmd(),
		newImproveCmd(),
		newStatusCmd(),
		newThemeCmd(),
		newClearCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line with cfg and logger attached to ctx.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	return newRootCmd().ExecuteContext(withRuntime(ctx, cfg, logger))
}

func withRuntime(ctx context.Context, cfg *config.Config, logger *errors.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey, cfg)
	return context.WithValue(ctx, loggerKey, logger)
}

// reloadConfig reloads configuration when --config or an override flag is
// set, and swaps the new config and logger into the command context.
func reloadConfig(cmd *cobra.Command, configFile string) error {
	bindings := make(map[string]*pflag.Flag)
	for key, name := range flagBindings {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			bindings[key] = flag
		}
	}
	if configFile == "" && len(bindings) == 0 {
		return nil
	}

	cfg, err := config.LoadWithFlags(configFile, bindings)
	if err != nil {
		return err
	}
	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	cmd.SetContext(withRuntime(cmd.Context(), cfg, logger))
	return nil
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg, nil
	}
	return nil, errors.NewInternalError("MISSING_CONFIG", "config not found in context", nil)
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) (*errors.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger, nil
	}
	return nil, errors.NewInternalError("MISSING_LOGGER", "logger not found in context", nil)
}
