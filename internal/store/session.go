package store

import (
	"context"
	"encoding/json"
	"fmt"

	"atsmatch/internal/errors"
	"atsmatch/internal/types"
)

// Fixed keys of the session state.
const (
	KeyResume         = "ats_resume_data"
	KeyAnalysis       = "ats_analysis_data"
	KeyJobDescription = "ats_job_description"
	KeyTheme          = "ats_theme"
)

// Session is the typed view of the session state held in a Store. Resume and
// analysis are stored as JSON, the job description and theme as raw strings.
type Session struct {
	store Store
}

// NewSession returns a Session backed by s.
func NewSession(s Store) *Session {
	return &Session{store: s}
}

func (s *Session) SaveResume(ctx context.Context, doc types.ResumeDocument) error {
	return s.setJSON(ctx, KeyResume, doc)
}

// Resume returns the stored resume and whether one exists.
func (s *Session) Resume(ctx context.Context) (types.ResumeDocument, bool, error) {
	var doc types.ResumeDocument
	ok, err := s.getJSON(ctx, KeyResume, &doc)
	return doc, ok, err
}

func (s *Session) SaveJobDescription(ctx context.Context, text string) error {
	return s.store.Set(ctx, KeyJobDescription, text)
}

func (s *Session) JobDescription(ctx context.Context) (string, bool, error) {
	return s.store.Get(ctx, KeyJobDescription)
}

func (s *Session) SaveAnalysis(ctx context.Context, result types.AnalysisResult) error {
	return s.setJSON(ctx, KeyAnalysis, result)
}

// Analysis returns the stored analysis and whether one exists.
func (s *Session) Analysis(ctx context.Context) (types.AnalysisResult, bool, error) {
	var result types.AnalysisResult
	ok, err := s.getJSON(ctx, KeyAnalysis, &result)
	return result, ok, err
}

// SaveTheme stores the display preference. Only light and dark are accepted.
func (s *Session) SaveTheme(ctx context.Context, theme types.Theme) error {
	if theme != types.ThemeLight && theme != types.ThemeDark {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown theme: %s", theme), nil)
	}
	return s.store.Set(ctx, KeyTheme, string(theme))
}

// Theme returns the stored theme, light when unset or unrecognised.
func (s *Session) Theme(ctx context.Context) (types.Theme, error) {
	value, ok, err := s.store.Get(ctx, KeyTheme)
	if err != nil {
		return types.ThemeLight, err
	}
	if !ok || types.Theme(value) != types.ThemeDark {
		return types.ThemeLight, nil
	}
	return types.ThemeDark, nil
}

// Clear drops the resume, job description and analysis. The theme survives.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, KeyResume, KeyAnalysis, KeyJobDescription)
}

// Status summarises what the session holds.
func (s *Session) Status(ctx context.Context) (types.SessionStatus, error) {
	var status types.SessionStatus

	doc, hasResume, err := s.Resume(ctx)
	if err != nil {
		return status, err
	}
	_, hasJob, err := s.JobDescription(ctx)
	if err != nil {
		return status, err
	}
	analysis, hasAnalysis, err := s.Analysis(ctx)
	if err != nil {
		return status, err
	}
	theme, err := s.Theme(ctx)
	if err != nil {
		return status, err
	}

	status.HasResume = hasResume
	status.ResumeFileName = doc.OriginalFileName
	status.HasJobDescription = hasJob
	status.HasAnalysis = hasAnalysis
	if hasAnalysis {
		score := analysis.Score
		status.LastScore = &score
	}
	status.Theme = theme
	return status, nil
}

func (s *Session) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeStoreFailed, "encode session value", err).
			WithContext("key", key)
	}
	return s.store.Set(ctx, key, string(data))
}

func (s *Session) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, errors.NewStorageError(errors.ErrCodeStoreDecode,
			fmt.Sprintf("stored value for %s is not valid JSON", key), err).WithContext("key", key)
	}
	return true, nil
}
