package cli

import (
	"context"
	"fmt"

	"atsmatch/internal/common"
	"atsmatch/internal/rewrite"
	"atsmatch/internal/session"
	"atsmatch/internal/textsource"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

func singleSource(sources []textsource.Source) (textsource.Source, error) {
	if len(sources) != 1 {
		return textsource.Source{}, fmt.Errorf("expected 1 file path, got %d", len(sources))
	}
	return sources[0], nil
}

// runWorkflow opens the session workflow and writes op's result.
func runWorkflow[Output any](cmd *cobra.Command, cc common.CommandConfig,
	op func(ctx context.Context, a *app, wf *session.Workflow) (Output, error)) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	wf, err := a.openWorkflow(cmd.Context())
	if err != nil {
		return err
	}
	return common.RunCommand(cmd.Context(), a.runner, cc, func(ctx context.Context) (Output, error) {
		return op(ctx, a, wf)
	})
}

// runWorkflowFile is runWorkflow for commands that read one input file.
func runWorkflowFile[Output any](cmd *cobra.Command, cc common.CommandConfig, args []string,
	op func(ctx context.Context, a *app, wf *session.Workflow, src textsource.Source) (Output, error)) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	wf, err := a.openWorkflow(cmd.Context())
	if err != nil {
		return err
	}
	logDetails := func(src textsource.Source, cfg common.CommandConfig) {
		a.logger.Info("Reading input", "command", cmd.Name(), "file", src.FileName, "chars", len(src.Text))
	}
	return common.RunFileCommand(cmd.Context(), a.runner, cc, args, singleSource,
		func(ctx context.Context, src textsource.Source) (Output, error) {
			return op(ctx, a, wf, src)
		}, logDetails)
}

func newUploadCmd() *cobra.Command {
	var cc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "upload [resume-file]",
		Short: "Store a resume as the current session's resume",
		Long: `Store a resume as the current session's resume, replacing any previous one.
The next step is "atsmatch job" with a job description.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflowFile(cmd, cc, args, func(ctx context.Context, a *app, wf *session.Workflow, src textsource.Source) (types.SessionStatus, error) {
				if _, err := wf.Upload(ctx, types.ResumeDocument{Text: src.Text, OriginalFileName: src.FileName}); err != nil {
					return types.SessionStatus{}, err
				}
				return wf.Status(ctx)
			})
		},
	}

	addOutputFlags(cmd, &cc)
	return cmd
}

func newJobCmd() *cobra.Command {
	var cc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "job [job-description-file]",
		Short: "Analyze the stored resume against a job description",
		Long: `Store a job description and analyze the session's resume against it.
Requires a resume stored with "atsmatch upload".`,
		Args:    cobra.ExactArgs(1),
		PreRunE: outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflowFile(cmd, cc, args, func(ctx context.Context, a *app, wf *session.Workflow, src textsource.Source) (types.AnalysisResult, error) {
				return wf.SubmitJobDescription(ctx, src.Text)
			})
		},
	}

	addOutputFlags(cmd, &cc)
	return cmd
}

func newResultsCmd() *cobra.Command {
	var cc common.CommandConfig

	cmd := &cobra.Command{
		Use:     "results",
		Short:   "Show the stored analysis",
		Args:    cobra.NoArgs,
		PreRunE: outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, cc, func(ctx context.Context, a *app, wf *session.Workflow) (types.AnalysisResult, error) {
				return wf.Results(ctx)
			})
		},
	}

	addOutputFlags(cmd, &cc)
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var cc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Rewrite the stored resume and compare scores without saving",
		Long: `Rewrite the stored resume with stronger action verbs and the missing keywords,
then score the rewrite against the stored job description. Nothing is saved;
use "atsmatch improve --apply" to keep the rewrite.`,
		Args:    cobra.NoArgs,
		PreRunE: outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, cc, func(ctx context.Context, a *app, wf *session.Workflow) (types.ImproveOutput, error) {
				return wf.PreviewImprovement(ctx)
			})
		},
	}

	addOutputFlags(cmd, &cc)
	return cmd
}

func newImproveCmd() *cobra.Command {
	var cc common.CommandConfig
	var apply bool
	var download string

	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Show the improved resume",
		Long: `Show the stored resume rewritten with stronger action verbs and an
"Additional Relevant Skills" section listing missing keywords.

--apply replaces the session's resume and analysis with the rewrite.
--download saves the rewritten text as a plain text file, by default
improved-resume.txt in the working directory.`,
		Args:    cobra.NoArgs,
		PreRunE: outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			downloadRequested := cmd.Flags().Changed("download")
			return runWorkflow(cmd, cc, func(ctx context.Context, a *app, wf *session.Workflow) (types.ImproveOutput, error) {
				var out types.ImproveOutput
				var err error
				if apply {
					out, err = wf.ApplyImprovement(ctx)
				} else {
					out, err = wf.ImprovedResume(ctx)
				}
				if err != nil || !downloadRequested {
					return out, err
				}

				target := download
				if target == rewrite.DefaultDownloadName {
					target = a.cfg.Rewrite.DownloadFileName
				}
				path, err := rewrite.Download(out.ImprovedText, target)
				if err != nil {
					return out, err
				}
				out.SavedTo = path
				a.logger.Info("Improved resume downloaded", "file", path, "content_type", rewrite.ContentType)
				return out, nil
			})
		},
	}

	addOutputFlags(cmd, &cc)
	cmd.Flags().BoolVar(&apply, "apply", false, "Replace the stored resume and analysis with the rewrite")
	cmd.Flags().StringVar(&download, "download", "", "Save the improved resume to a text file or directory")
	cmd.Flags().Lookup("download").NoOptDefVal = rewrite.DefaultDownloadName
	return cmd
}

func newStatusCmd() *cobra.Command {
	var cc common.CommandConfig

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show what the session currently holds",
		Args:    cobra.NoArgs,
		PreRunE: outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, cc, func(ctx context.Context, a *app, wf *session.Workflow) (types.SessionStatus, error) {
				return wf.Status(ctx)
			})
		},
	}

	addOutputFlags(cmd, &cc)
	return cmd
}
