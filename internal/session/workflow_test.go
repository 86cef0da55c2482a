package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"atsmatch/internal/ats"
	"atsmatch/internal/errors"
	"atsmatch/internal/rewrite"
	"atsmatch/internal/store"
	"atsmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testResume = "I was responsible for sales. Worked on reports. Managed 5 projects."
	testJob    = "Looking for project management, python and docker skills"
)

type countingTracer struct {
	operations []string
}

func (c *countingTracer) TraceAnalysis(_ context.Context, operation string, run func() types.AnalysisResult) types.AnalysisResult {
	c.operations = append(c.operations, operation)
	return run()
}

func newTestWorkflow(t *testing.T, opts ...Option) (*Workflow, *store.Session) {
	t.Helper()
	sess := store.NewSession(store.NewMemoryStore())
	analyzer := &ats.Analyzer{Now: func() time.Time { return time.Unix(1700000000, 0) }}
	return NewWorkflow(sess, analyzer, opts...), sess
}

func TestWorkflowHappyPath(t *testing.T) {
	ctx := context.Background()
	tracer := &countingTracer{}
	w, sess := newTestWorkflow(t, WithTracer(tracer))

	page, err := w.Upload(ctx, types.ResumeDocument{Text: testResume, OriginalFileName: "cv.txt"})
	require.NoError(t, err)
	assert.Equal(t, PageJobDescription, page)

	result, err := w.SubmitJobDescription(ctx, testJob)
	require.NoError(t, err)
	assert.Equal(t, PageResults, w.Router().Current())
	assert.Contains(t, result.MatchedKeywords, "project")
	assert.Greater(t, result.Score, 0)

	stored, ok, err := sess.Analysis(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result, stored)

	job, _, err := sess.JobDescription(ctx)
	require.NoError(t, err)
	assert.Equal(t, testJob, job)

	got, err := w.Results(ctx)
	require.NoError(t, err)
	assert.Equal(t, result, got)
	assert.Equal(t, []string{OperationAnalyze}, tracer.operations)
}

func TestWorkflowPreviewDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	w, sess := newTestWorkflow(t)

	_, err := w.Upload(ctx, types.ResumeDocument{Text: testResume})
	require.NoError(t, err)
	before, err := w.SubmitJobDescription(ctx, testJob)
	require.NoError(t, err)

	preview, err := w.PreviewImprovement(ctx)
	require.NoError(t, err)
	require.NotNil(t, preview.After)
	assert.Contains(t, preview.ImprovedText, "Architected")
	assert.Contains(t, preview.ImprovedText, rewrite.SkillsHeader)
	assert.Equal(t, before.MissingKeywords, preview.AddedKeywords)
	assert.Equal(t, before, preview.Before)
	assert.False(t, preview.AppliedToStore)
	assert.GreaterOrEqual(t, preview.After.MatchPercentage, before.MatchPercentage)

	stored, _, err := sess.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, testResume, stored.Text)
}

func TestWorkflowApplyImprovement(t *testing.T) {
	ctx := context.Background()
	w, sess := newTestWorkflow(t)

	_, err := w.Upload(ctx, types.ResumeDocument{Text: testResume, OriginalFileName: "cv.txt"})
	require.NoError(t, err)
	_, err = w.SubmitJobDescription(ctx, testJob)
	require.NoError(t, err)

	out, err := w.ApplyImprovement(ctx)
	require.NoError(t, err)
	assert.True(t, out.AppliedToStore)

	doc, _, err := sess.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, out.ImprovedText, doc.Text)
	assert.Equal(t, "cv.txt", doc.OriginalFileName)

	analysis, _, err := sess.Analysis(ctx)
	require.NoError(t, err)
	assert.Equal(t, *out.After, analysis)
}

func TestWorkflowImprovedResume(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkflow(t, WithRewriter(rewrite.Rewriter{SkillsLimit: 1}))

	_, err := w.Upload(ctx, types.ResumeDocument{Text: testResume})
	require.NoError(t, err)
	_, err = w.SubmitJobDescription(ctx, testJob)
	require.NoError(t, err)

	out, err := w.ImprovedResume(ctx)
	require.NoError(t, err)
	assert.Equal(t, PageImproved, w.Router().Current())
	assert.Len(t, out.AddedKeywords, 1)
	assert.True(t, strings.HasSuffix(out.ImprovedText, out.AddedKeywords[0]+"\n"))
	assert.Nil(t, out.After)
}

func TestWorkflowImproveRewritesAnalysedResume(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkflow(t)

	_, err := w.Upload(ctx, types.ResumeDocument{Text: "Worked on reports"})
	require.NoError(t, err)
	analysis, err := w.SubmitJobDescription(ctx, "python docker kubernetes")
	require.NoError(t, err)
	require.Equal(t, []string{"python", "docker", "kubernetes"}, analysis.MissingKeywords)

	_, err = w.Upload(ctx, types.ResumeDocument{Text: "Expert in python docker kubernetes"})
	require.NoError(t, err)

	want := rewrite.ImproveResume("Worked on reports", analysis.MissingKeywords)

	out, err := w.ImprovedResume(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, out.ImprovedText)
	assert.Equal(t, "Worked on reports", out.Before.ResumeText)
	assert.NotContains(t, out.ImprovedText, "Expert")

	preview, err := w.PreviewImprovement(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, preview.ImprovedText)
	assert.Equal(t, want, preview.After.ResumeText)
}

func TestWorkflowGuards(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkflow(t)

	_, err := w.SubmitJobDescription(ctx, testJob)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoResume))
	assert.Equal(t, PageUpload, w.Router().Current())

	_, err = w.Results(ctx)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoAnalysis))

	_, err = w.PreviewImprovement(ctx)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoAnalysis))

	_, err = w.ImprovedResume(ctx)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoAnalysis))
	assert.Equal(t, PageUpload, w.Router().Current())
}

func TestWorkflowRejectsBlankInput(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkflow(t)

	_, err := w.Upload(ctx, types.ResumeDocument{Text: "  \n"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyInput))

	_, err = w.Upload(ctx, types.ResumeDocument{Text: testResume})
	require.NoError(t, err)
	_, err = w.SubmitJobDescription(ctx, "\t")
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyInput))
}

func TestWorkflowStartOver(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkflow(t)

	_, err := w.Upload(ctx, types.ResumeDocument{Text: testResume})
	require.NoError(t, err)
	_, err = w.SubmitJobDescription(ctx, testJob)
	require.NoError(t, err)
	require.NoError(t, w.SetTheme(ctx, types.ThemeDark))
	assert.True(t, errors.HasCode(w.SetTheme(ctx, "sepia"), errors.ErrCodeInvalidRequest))

	page, err := w.StartOver(ctx)
	require.NoError(t, err)
	assert.Equal(t, PageUpload, page)

	status, err := w.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(PageUpload), status.CurrentPage)
	assert.False(t, status.HasResume)
	assert.False(t, status.HasAnalysis)
	assert.Equal(t, types.ThemeDark, status.Theme)
}
