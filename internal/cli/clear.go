package cli

import (
	"context"
	stderrors "errors"
	"io"

	"atsmatch/internal/common"
	"atsmatch/internal/session"
	"atsmatch/internal/types"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newClearCmd() *cobra.Command {
	var cc common.CommandConfig
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Start over by clearing the stored resume, job description and analysis",
		Long: `Remove the stored resume, job description and analysis. The display theme
is kept. Asks for confirmation unless --yes is given.`,
		Args:    cobra.NoArgs,
		PreRunE: outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				confirmed, err := confirmClear(cmd)
				if err != nil {
					return err
				}
				if !confirmed {
					return nil
				}
			}
			return runWorkflow(cmd, cc, func(ctx context.Context, a *app, wf *session.Workflow) (types.SessionStatus, error) {
				if _, err := wf.StartOver(ctx); err != nil {
					return types.SessionStatus{}, err
				}
				return wf.Status(ctx)
			})
		},
	}

	addOutputFlags(cmd, &cc)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirmClear asks on the command's stdin. A "no" answer is not an error.
func confirmClear(cmd *cobra.Command) (bool, error) {
	prompt := promptui.Prompt{
		Label:     "Clear the stored resume, job description and analysis",
		IsConfirm: true,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopWriteCloser{cmd.ErrOrStderr()},
	}
	if _, err := prompt.Run(); err != nil {
		if stderrors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
