package cli

import (
	"context"

	"atsmatch/internal/common"
	"atsmatch/internal/session"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

func newThemeCmd() *cobra.Command {
	var cc common.CommandConfig

	cmd := &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the display theme",
		Long:      "Show the stored display theme, or store a new one. The theme is kept when the session is cleared.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(types.ThemeLight), string(types.ThemeDark)},
		PreRunE:   outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, cc, func(ctx context.Context, a *app, wf *session.Workflow) (types.SessionStatus, error) {
				if len(args) == 1 {
					if err := wf.SetTheme(ctx, types.Theme(args[0])); err != nil {
						return types.SessionStatus{}, err
					}
					a.logger.Info("Theme updated", "theme", args[0])
				}
				return wf.Status(ctx)
			})
		},
	}

	addOutputFlags(cmd, &cc)
	return cmd
}
