package cli

import (
	"context"
	"fmt"

	"atsmatch/internal/common"
	"atsmatch/internal/textsource"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

type analyzeInput struct {
	Resume textsource.Source
	Job    textsource.Source
}

func newAnalyzeCmd() *cobra.Command {
	var cc common.CommandConfig
	var save bool

	cmd := &cobra.Command{
		Use:   "analyze [resume-file] [job-description-file]",
		Short: "Score a resume against a job description",
		Long: `Score a resume against a job description in one step.

The analysis includes:
- ATS score from 0 to 100
- Keyword match percentage and keyword density
- Matched and missing keywords
- Improvement suggestions

Use "-" for either file to read it from standard input. HTML job postings are
converted to text first. With --save the resume, job description and
analysis are stored as the current session.`,
		Args:    cobra.ExactArgs(2),
		PreRunE: outputPreRun(&cc),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, cc, save)
		},
	}

	addOutputFlags(cmd, &cc)
	cmd.Flags().BoolVar(&save, "save", false, "Store the resume, job description and analysis in the session")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, cc common.CommandConfig, save bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	createInput := func(sources []textsource.Source) (analyzeInput, error) {
		if len(sources) != 2 {
			return analyzeInput{}, fmt.Errorf("expected 2 file paths, got %d", len(sources))
		}
		return analyzeInput{Resume: sources[0], Job: sources[1]}, nil
	}

	logDetails := func(input analyzeInput, cfg common.CommandConfig) {
		a.logger.Info("Starting resume analysis",
			"resume_file", input.Resume.FileName,
			"resume_chars", len(input.Resume.Text),
			"job_file", input.Job.FileName,
			"job_chars", len(input.Job.Text),
			"output_format", cfg.OutputFormat,
			"save", save)
	}

	operation := func(ctx context.Context, input analyzeInput) (types.AnalysisResult, error) {
		if !save {
			return a.analyze(ctx, input.Resume.Text, input.Job.Text), nil
		}

		wf, err := a.openWorkflow(ctx)
		if err != nil {
			return types.AnalysisResult{}, err
		}
		doc := types.ResumeDocument{Text: input.Resume.Text, OriginalFileName: input.Resume.FileName}
		if _, err := wf.Upload(ctx, doc); err != nil {
			return types.AnalysisResult{}, err
		}
		return wf.SubmitJobDescription(ctx, input.Job.Text)
	}

	if err := common.RunFileCommand(cmd.Context(), a.runner, cc, args, createInput, operation, logDetails); err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	a.logger.Info("Resume analysis completed successfully")
	return nil
}
