package session

import (
	"context"
	stderrors "errors"
	"strings"

	"atsmatch/internal/errors"
	"atsmatch/internal/rewrite"
	"atsmatch/internal/store"
	"atsmatch/internal/types"
)

// Analyzer produces an analysis record from two texts.
type Analyzer interface {
	Analyze(resumeText, jobDescriptionText string) types.AnalysisResult
}

// Tracer wraps one analysis run, typically with a span and metrics.
type Tracer interface {
	TraceAnalysis(ctx context.Context, operation string, run func() types.AnalysisResult) types.AnalysisResult
}

// Operation names handed to the Tracer.
const (
	OperationAnalyze = "ats.analyze"
	OperationImprove = "ats.improve"
)

// Workflow orchestrates the session steps. The analyzer never sees the store.
type Workflow struct {
	router   *Router
	session  *store.Session
	analyzer Analyzer
	rewriter rewrite.Rewriter
	tracer   Tracer
	logger   *errors.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithRewriter overrides the default rewriter.
func WithRewriter(r rewrite.Rewriter) Option {
	return func(w *Workflow) { w.rewriter = r }
}

// WithTracer wraps analysis runs with t.
func WithTracer(t Tracer) Option {
	return func(w *Workflow) { w.tracer = t }
}

// WithLogger sets the workflow logger.
func WithLogger(l *errors.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// NewWorkflow builds a Workflow whose router guards pages against sess.
func NewWorkflow(sess *store.Session, analyzer Analyzer, opts ...Option) *Workflow {
	w := &Workflow{
		session:  sess,
		analyzer: analyzer,
		logger:   errors.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.router = NewRouter(w.guard)
	return w
}

// Router exposes the workflow's page state.
func (w *Workflow) Router() *Router { return w.router }

// guard mirrors the page preconditions: the job description step needs a
// resume, results and the improved resume need an analysis.
func (w *Workflow) guard(ctx context.Context, page Page) (bool, Page, error) {
	switch page {
	case PageJobDescription:
		_, ok, err := w.session.Resume(ctx)
		return ok, PageUpload, err
	case PageResults, PageImproved:
		_, ok, err := w.session.Analysis(ctx)
		return ok, PageUpload, err
	default:
		return true, page, nil
	}
}

// Upload replaces the stored resume and moves on to the job description step.
func (w *Workflow) Upload(ctx context.Context, doc types.ResumeDocument) (Page, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return w.router.Current(), errors.NewValidationError(errors.ErrCodeEmptyInput, "resume text is empty", nil)
	}
	if err := w.session.SaveResume(ctx, doc); err != nil {
		return w.router.Current(), err
	}
	w.logger.Info("Resume uploaded", "file", doc.OriginalFileName, "chars", len(doc.Text))
	return w.router.Navigate(ctx, string(PageJobDescription))
}

// SubmitJobDescription stores the job text, analyzes the stored resume
// against it and moves on to the results step.
func (w *Workflow) SubmitJobDescription(ctx context.Context, text string) (types.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return types.AnalysisResult{}, errors.NewValidationError(errors.ErrCodeEmptyInput, "job description is empty", nil)
	}
	if _, err := w.router.Navigate(ctx, string(PageJobDescription)); err != nil {
		return types.AnalysisResult{}, blockedAs(err, errors.ErrCodeNoResume, "upload a resume first")
	}

	doc, _, err := w.session.Resume(ctx)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	if err := w.session.SaveJobDescription(ctx, text); err != nil {
		return types.AnalysisResult{}, err
	}

	result := w.analyze(ctx, OperationAnalyze, doc.Text, text)
	if err := w.session.SaveAnalysis(ctx, result); err != nil {
		return types.AnalysisResult{}, err
	}
	w.logger.Info("Analysis stored", "id", result.ID, "score", result.Score, "match", result.MatchPercentage)

	if _, err := w.router.Navigate(ctx, string(PageResults)); err != nil {
		return types.AnalysisResult{}, err
	}
	return result, nil
}

// Results returns the stored analysis.
func (w *Workflow) Results(ctx context.Context) (types.AnalysisResult, error) {
	if _, err := w.router.Navigate(ctx, string(PageResults)); err != nil {
		return types.AnalysisResult{}, blockedAs(err, errors.ErrCodeNoAnalysis, "no analysis yet")
	}
	result, _, err := w.session.Analysis(ctx)
	return result, err
}

// PreviewImprovement rewrites the resume the stored analysis was computed
// from and scores the rewrite against the same job description. Nothing is
// persisted.
func (w *Workflow) PreviewImprovement(ctx context.Context) (types.ImproveOutput, error) {
	before, err := w.Results(ctx)
	if err != nil {
		return types.ImproveOutput{}, err
	}

	improved := w.rewriter.Improve(before.ResumeText, before.MissingKeywords)
	after := w.analyze(ctx, OperationImprove, improved, before.JobDescriptionText)

	return types.ImproveOutput{
		ImprovedText:  improved,
		AddedKeywords: w.rewriter.AddedKeywords(before.MissingKeywords),
		Before:        before,
		After:         &after,
	}, nil
}

// ApplyImprovement persists the previewed rewrite as the session's resume and
// analysis. The original file name is kept.
func (w *Workflow) ApplyImprovement(ctx context.Context) (types.ImproveOutput, error) {
	out, err := w.PreviewImprovement(ctx)
	if err != nil {
		return out, err
	}

	doc, _, err := w.session.Resume(ctx)
	if err != nil {
		return out, err
	}
	doc.Text = out.ImprovedText
	if err := w.session.SaveResume(ctx, doc); err != nil {
		return out, err
	}
	if err := w.session.SaveAnalysis(ctx, *out.After); err != nil {
		return out, err
	}
	out.AppliedToStore = true
	w.logger.Info("Improved resume applied", "before", out.Before.Score, "after", out.After.Score)
	return out, nil
}

// ImprovedResume opens the improved resume step and returns the rewrite.
func (w *Workflow) ImprovedResume(ctx context.Context) (types.ImproveOutput, error) {
	if _, err := w.router.Navigate(ctx, string(PageImproved)); err != nil {
		return types.ImproveOutput{}, blockedAs(err, errors.ErrCodeNoAnalysis, "no analysis yet")
	}
	before, _, err := w.session.Analysis(ctx)
	if err != nil {
		return types.ImproveOutput{}, err
	}
	return types.ImproveOutput{
		ImprovedText:  w.rewriter.Improve(before.ResumeText, before.MissingKeywords),
		AddedKeywords: w.rewriter.AddedKeywords(before.MissingKeywords),
		Before:        before,
	}, nil
}

// StartOver clears the session, keeping the theme, and returns to upload.
func (w *Workflow) StartOver(ctx context.Context) (Page, error) {
	if err := w.session.Clear(ctx); err != nil {
		return w.router.Current(), err
	}
	w.logger.Info("Session cleared")
	return w.router.Navigate(ctx, string(PageUpload))
}

// SetTheme stores the display theme. It survives StartOver.
func (w *Workflow) SetTheme(ctx context.Context, theme types.Theme) error {
	return w.session.SaveTheme(ctx, theme)
}

// Status reports the stored state and the current page.
func (w *Workflow) Status(ctx context.Context) (types.SessionStatus, error) {
	status, err := w.session.Status(ctx)
	status.CurrentPage = string(w.router.Current())
	return status, err
}

func (w *Workflow) analyze(ctx context.Context, operation, resumeText, jobText string) types.AnalysisResult {
	run := func() types.AnalysisResult { return w.analyzer.Analyze(resumeText, jobText) }
	if w.tracer == nil {
		return run()
	}
	return w.tracer.TraceAnalysis(ctx, operation, run)
}

// blockedAs turns a guard redirect into the caller-facing precondition error.
func blockedAs(err error, code, message string) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Code == errors.ErrCodeRouteBlocked {
		return errors.NewWorkflowError(code, message, err)
	}
	return err
}
