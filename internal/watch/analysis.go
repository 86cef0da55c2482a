package watch

import (
	"context"

	"atsmatch/internal/types"
)

// TextLoader reads the current content of a watched file.
type TextLoader interface {
	LoadText(path string) (string, error)
}

// AnalyzeFunc scores a resume against a job description.
type AnalyzeFunc func(ctx context.Context, resumeText, jobText string) types.AnalysisResult

// Reanalyze returns a ChangeFunc that reloads both files and hands a fresh
// analysis to onResult. Load failures go to onError and skip the run, so a
// half-saved file does not end the watch.
func Reanalyze(resumePath, jobPath string, loader TextLoader, analyze AnalyzeFunc,
	onResult func(types.AnalysisResult), onError func(error)) ChangeFunc {
	return func(ctx context.Context, _ []string) {
		result, err := AnalyzeFiles(ctx, resumePath, jobPath, loader, analyze)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onResult(result)
	}
}

// AnalyzeFiles loads both files and analyzes them once.
func AnalyzeFiles(ctx context.Context, resumePath, jobPath string, loader TextLoader, analyze AnalyzeFunc) (types.AnalysisResult, error) {
	resume, err := loader.LoadText(resumePath)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	job, err := loader.LoadText(jobPath)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	return analyze(ctx, resume, job), nil
}
